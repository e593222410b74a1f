package analytics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/kingsrook/qqq-client/model"
)

const OUTCOME_TRANSPORT_ERROR = "TRANSPORT_ERROR"

var (
	ExchangeLatency = stats.Float64("qqq/process/exchange_latency", "Latency of process exchanges", stats.UnitMilliseconds)

	KeyOperation, _ = tag.NewKey("operation")
	KeyOutcome, _   = tag.NewKey("outcome")

	ExchangeLatencyView = &view.View{
		Name:        "qqq/process/exchange_latency",
		Measure:     ExchangeLatency,
		Description: "Distribution of process exchange latency",
		TagKeys:     []tag.Key{KeyOperation, KeyOutcome},
		Aggregation: view.Distribution(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	}
	ExchangeCountView = &view.View{
		Name:        "qqq/process/exchange_count",
		Measure:     ExchangeLatency,
		Description: "Number of process exchanges",
		TagKeys:     []tag.Key{KeyOperation, KeyOutcome},
		Aggregation: view.Count(),
	}
)

func RegisterViews() error {
	return view.Register(ExchangeLatencyView, ExchangeCountView)
}

func UnregisterViews() {
	view.Unregister(ExchangeLatencyView, ExchangeCountView)
}

// RecordExchange records one transport exchange. kind is ignored when err is set.
func RecordExchange(ctx context.Context, op string, kind model.JobOutcomeKind, latency time.Duration, err error) {
	outcome := string(kind)
	if err != nil {
		outcome = OUTCOME_TRANSPORT_ERROR
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyOperation, op), tag.Upsert(KeyOutcome, outcome)},
		ExchangeLatency.M(float64(latency)/float64(time.Millisecond)))
}
