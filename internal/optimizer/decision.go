package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// Decision paths, used as metric labels.
const (
	PathSingleStore = "single_store"
	PathRoute       = "route"
	PathAnalysis    = "analysis"
)

// Engine decides whether splitting a basket across stores pays for the trip.
type Engine struct {
	estimator TravelCostEstimator
	sequencer StopSequencer
	config    *Config
	metrics   *MetricsRecorder
	logger    zerolog.Logger
}

// NewEngine creates a decision engine. Stops are ordered by NearestNeighbor.
func NewEngine(estimator TravelCostEstimator, config *Config, metrics *MetricsRecorder) *Engine {
	if config == nil {
		config = Defaults()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &Engine{
		estimator: estimator,
		sequencer: NearestNeighbor{},
		config:    config,
		metrics:   metrics,
		logger:    log.With().Str("component", "decision_engine").Logger(),
	}
}

// WithSequencer replaces the stop sequencer.
func (e *Engine) WithSequencer(s StopSequencer) *Engine {
	e.sequencer = s
	return e
}

// Decide implements Planner.
//
// Grocery savings compare the multi-store total against the cheapest single
// store over all stores. The multi-store allocation only considers stores
// with a location, since those are the only ones a trip can visit. When the
// allocation needs one store the trip is not costed at all.
func (e *Engine) Decide(ctx context.Context, snap *catalog.Snapshot, req *RouteRequest) (*Recommendation, error) {
	startTime := time.Now()
	path := PathRoute

	ctx, span := otel.Tracer(tracerName).Start(ctx, "optimizer.decide")
	defer span.End()
	defer func() {
		e.metrics.RecordDecisionDuration(path, time.Since(startTime))
	}()

	if err := req.Validate(e.config.MaxBasketItems); err != nil {
		return nil, e.reject(span, err)
	}
	e.metrics.RecordBasketSize(len(req.Basket))
	span.SetAttributes(attribute.Int("basket.lines", len(req.Basket)))

	totals := SingleStoreTotals(snap.Stores, snap.Categories, req.Basket)
	best, _, err := RankSingleStores(totals)
	if err != nil {
		return nil, e.reject(span, err)
	}

	located := snap.LocatedStores()
	if len(located) == 0 {
		return nil, e.reject(span, ErrNoStoreLocations)
	}

	alloc := MultiStoreAllocation(snap.Categories, req.Basket, located)
	required := alloc.RequiredStores()
	if len(required) == 0 {
		return nil, e.reject(span, ErrNoRoutableItems)
	}
	e.metrics.RecordRequiredStops(len(required))

	stores := make([]catalog.Store, 0, len(required))
	for _, id := range required {
		s, _ := snap.Store(id)
		stores = append(stores, s)
	}

	rec := &Recommendation{
		SingleStoreBest: best,
		MultiStoreTotal: alloc.Total,
		GrocerySavings:  best.Total - alloc.Total,
	}

	if len(stores) == 1 {
		path = PathSingleStore
		rec.Travel = TravelCost{Source: TravelSourceNone}
		rec.Visits = buildVisits(alloc, stores, req.Settings)
		rec.NetSavings = rec.GrocerySavings
		rec.IsWorthIt = rec.NetSavings > 0
		rec.Text = singleStoreText(stores[0], len(req.Basket), rec)
	} else {
		ordered := e.sequencer.OrderStops(req.UserLocation, stores)
		stops := make([]catalog.Location, 0, len(ordered))
		for _, s := range ordered {
			stops = append(stops, *s.Location)
		}

		rec.Travel, rec.Polyline = e.estimator.Estimate(ctx, req.UserLocation, stops, req.Settings)
		rec.Visits = buildVisits(alloc, ordered, req.Settings)
		rec.NetSavings = rec.GrocerySavings - rec.Travel.Total
		rec.IsWorthIt = rec.NetSavings > 0
		rec.Text = routeText(rec)
	}

	e.metrics.RecordVerdict(path, rec.IsWorthIt)
	span.SetAttributes(
		attribute.String("decision.path", path),
		attribute.Int("route.stops", len(rec.Visits)),
		attribute.String("travel.source", string(rec.Travel.Source)),
		attribute.Bool("decision.worth_it", rec.IsWorthIt),
	)

	e.logger.Debug().
		Str("path", path).
		Int("stops", len(rec.Visits)).
		Int64("grocery_savings_cents", int64(rec.GrocerySavings)).
		Int64("travel_cost_cents", int64(rec.Travel.Total)).
		Bool("worth_it", rec.IsWorthIt).
		Msg("Recommendation computed")

	return rec, nil
}

// reject records an unsatisfiable or invalid request and returns err.
func (e *Engine) reject(span trace.Span, err error) error {
	reason := "invalid_request"
	switch {
	case errors.Is(err, ErrEmptyBasket):
		reason = "empty_basket"
	case errors.Is(err, ErrNoPricedItems):
		reason = "no_priced_items"
	case errors.Is(err, ErrNoStoreLocations):
		reason = "no_store_locations"
	case errors.Is(err, ErrNoRoutableItems):
		reason = "no_routable_items"
	}
	e.metrics.RecordDecisionError(reason)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// buildVisits groups allocation lines by store in route order.
func buildVisits(alloc Allocation, route []catalog.Store, settings RouteSettings) []StoreVisit {
	visits := make([]StoreVisit, 0, len(route))
	for _, s := range route {
		items, subtotal := alloc.LinesAt(s.ID)
		visits = append(visits, StoreVisit{
			Store:        s,
			Items:        items,
			Subtotal:     subtotal,
			VisitMinutes: settings.TimePerStoreMinutes,
		})
	}
	return visits
}

func formatMoney(c catalog.Cents) string {
	if c < 0 {
		return fmt.Sprintf("-$%.2f", (-c).Float())
	}
	return fmt.Sprintf("$%.2f", c.Float())
}

// singleStoreText only claims the whole list is cheapest at store when every
// line was priced on the map and no unlocated store beats it.
func singleStoreText(store catalog.Store, basketLines int, rec *Recommendation) string {
	priced := 0
	for _, v := range rec.Visits {
		priced += len(v.Items)
	}

	var text string
	switch {
	case priced < basketLines:
		text = fmt.Sprintf("%d of %d items on your list are sold at stores on the map, all at %s.",
			priced, basketLines, store.Name)
	case rec.GrocerySavings < 0:
		text = fmt.Sprintf("%s is the only stop you need among stores on the map.", store.Name)
	default:
		text = fmt.Sprintf("Everything on your list is cheapest at %s.", store.Name)
	}
	text += fmt.Sprintf(" Shop there for %s, no extra stops needed.", formatMoney(rec.MultiStoreTotal))

	switch {
	case rec.GrocerySavings > 0 && rec.SingleStoreBest.StoreID != store.ID:
		text += fmt.Sprintf(" That is %s less than %s.", formatMoney(rec.GrocerySavings), rec.SingleStoreBest.StoreName)
	case rec.GrocerySavings < 0:
		text += fmt.Sprintf(" %s is cheaper at %s but has no location.",
			rec.SingleStoreBest.StoreName, formatMoney(rec.SingleStoreBest.Total))
	}
	return text
}

func routeText(rec *Recommendation) string {
	if rec.IsWorthIt {
		return fmt.Sprintf("Worth it! Splitting your list across %d stores saves %s on groceries. "+
			"After %s in gas and time (%.1f km, %.0f min), you come out %s ahead.",
			len(rec.Visits), formatMoney(rec.GrocerySavings),
			formatMoney(rec.Travel.Total), rec.Travel.DistanceKm, rec.Travel.TripMinutes,
			formatMoney(rec.NetSavings))
	}
	return fmt.Sprintf("Not worth it. Splitting your list across %d stores saves %s on groceries, "+
		"but the trip costs %s in gas and time (%.1f km, %.0f min). Shop at %s instead for %s.",
		len(rec.Visits), formatMoney(rec.GrocerySavings),
		formatMoney(rec.Travel.Total), rec.Travel.DistanceKm, rec.Travel.TripMinutes,
		rec.SingleStoreBest.StoreName, formatMoney(rec.SingleStoreBest.Total))
}
