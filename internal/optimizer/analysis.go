package optimizer

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// weeksPerYear projects a weekly shop over a year.
const weeksPerYear = 52

// Analyze implements Planner. It compares the cheapest and the most expensive
// single store with a multi-store allocation over every store, ignoring travel.
// Single-store totals only cover the lines a store prices, so SavingsVsWorst
// goes negative when the worst store carries part of the basket.
func (e *Engine) Analyze(ctx context.Context, snap *catalog.Snapshot, basket []BasketItem) (*BasketAnalysis, error) {
	startTime := time.Now()
	defer func() {
		e.metrics.RecordDecisionDuration(PathAnalysis, time.Since(startTime))
	}()

	_, span := otel.Tracer(tracerName).Start(ctx, "optimizer.analyze")
	defer span.End()

	if err := validateBasket(basket, e.config.MaxBasketItems); err != nil {
		return nil, e.reject(span, err)
	}
	e.metrics.RecordBasketSize(len(basket))

	totals := SingleStoreTotals(snap.Stores, snap.Categories, basket)
	best, worst, err := RankSingleStores(totals)
	if err != nil {
		return nil, e.reject(span, err)
	}

	alloc := MultiStoreAllocation(snap.Categories, basket, snap.Stores)
	savings := worst.Total - alloc.Total

	span.SetAttributes(
		attribute.Int("basket.lines", len(basket)),
		attribute.String("analysis.best_store", best.StoreID),
		attribute.Int64("analysis.savings_cents", int64(savings)),
	)

	return &BasketAnalysis{
		Best:             best,
		Worst:            worst,
		Allocation:       alloc,
		SavingsVsWorst:   savings,
		SavingsPercent:   SavingsPercent(alloc.Total, worst.Total),
		AnnualProjection: savings * weeksPerYear,
	}, nil
}

// SavingsPercent returns round((1 - paid/reference) * 100) clamped to
// [0, 100], or 0 when the reference is not positive. paid exceeds reference
// when the priciest store only carries part of the basket.
func SavingsPercent(paid, reference catalog.Cents) int {
	if reference <= 0 {
		return 0
	}
	pct := int(math.Round((1 - float64(paid)/float64(reference)) * 100))
	return max(0, min(pct, 100))
}
