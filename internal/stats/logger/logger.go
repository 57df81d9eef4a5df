// Package logger emits metrics through a zap logger. It is what the coach
// CLI wires by default, so the analysis counters (plies analyzed, blunders,
// positions harvested) show up in the debug log without a metrics backend.
package logger

import (
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/stats"
)

// Collector writes every metric update as a debug log line.
type Collector struct {
	logger *zap.Logger
}

var _ stats.Collector = (*Collector)(nil)

// New wraps logger into a collector. A nil logger discards everything.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.emit("counter", zap.String("metric", name), zap.Int64("delta", delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	c.emit("gauge", zap.String("metric", name), zap.Int64("value", value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.emit("histogram", zap.String("metric", name), zap.Float64("value", value))
}

func (c *Collector) emit(kind string, fields ...zap.Field) {
	c.logger.Debug("metric "+kind, fields...)
}
