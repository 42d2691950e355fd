package tree

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	LLRBStatsName = "xllrb/llrb"
)

// llrbStats methods are safe on a nil receiver, a tree built
// without stats pays one nil check per event.
type llrbStats struct {
	attrs       metric.MeasurementOption
	insertCount metric.Int64Counter
	updateCount metric.Int64Counter
	deleteCount metric.Int64Counter
	rotateCount metric.Int64Counter
	flipCount   metric.Int64Counter
	size        metric.Int64UpDownCounter
}

func newLLRBStats(name string) *llrbStats {
	meter := otel.Meter(LLRBStatsName)
	return &llrbStats{
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String("llrb.name", name),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.insert.count",
			metric.WithDescription(`The number of inserted keys.`),
		)),
		updateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.update.count",
			metric.WithDescription(`The number of values overwritten by inserting an existing key.`),
		)),
		deleteCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.delete.count",
			metric.WithDescription(`The number of removed keys.`),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.rotate.count",
			metric.WithDescription(`The number of left and right rotations.`),
		)),
		flipCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.flip.count",
			metric.WithDescription(`The number of color flips.`),
		)),
		size: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"llrb.size",
			metric.WithDescription(`The number of keys held by the tree.`),
		)),
	}
}

func (stats *llrbStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1, stats.attrs)
	stats.size.Add(context.Background(), 1, stats.attrs)
}

func (stats *llrbStats) IncreaseUpdateCount() {
	if stats == nil {
		return
	}
	stats.updateCount.Add(context.Background(), 1, stats.attrs)
}

func (stats *llrbStats) IncreaseDeleteCount() {
	if stats == nil {
		return
	}
	stats.deleteCount.Add(context.Background(), 1, stats.attrs)
	stats.size.Add(context.Background(), -1, stats.attrs)
}

func (stats *llrbStats) IncreaseRotateCount() {
	if stats == nil {
		return
	}
	stats.rotateCount.Add(context.Background(), 1, stats.attrs)
}

func (stats *llrbStats) IncreaseFlipCount() {
	if stats == nil {
		return
	}
	stats.flipCount.Add(context.Background(), 1, stats.attrs)
}

func (stats *llrbStats) RecordRelease(count int64) {
	if stats == nil {
		return
	}
	stats.size.Add(context.Background(), -count, stats.attrs)
}
