package optimizer

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/inflationfighter/price-service/internal/catalog"
)

const tracerName = "github.com/inflationfighter/price-service/internal/optimizer"

// TravelEstimator prices a closed trip. It asks the route provider for the
// real driving distance and duration and falls back to a straight-line
// estimate whenever the provider is missing, refuses, fails or returns
// something unusable. Estimate never returns an error.
type TravelEstimator struct {
	provider RouteProvider
	breaker  *CircuitBreaker
	config   *Config
	metrics  *MetricsRecorder
	logger   zerolog.Logger
}

// NewTravelEstimator creates an estimator. provider may be nil, in which case
// every trip is estimated locally.
func NewTravelEstimator(provider RouteProvider, config *Config, metrics *MetricsRecorder) *TravelEstimator {
	if config == nil {
		config = Defaults()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	logger := log.With().Str("component", "travel_estimator").Logger()

	e := &TravelEstimator{
		provider: provider,
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
	if provider != nil {
		cbConfig := config.CircuitBreaker
		e.breaker = NewCircuitBreaker("route_provider", &cbConfig, metrics, &logger)
	}
	return e
}

// Estimate implements TravelCostEstimator. The route is start -> stops in
// order -> start. The second return value is the encoded route geometry,
// empty when the figures are estimated.
func (e *TravelEstimator) Estimate(ctx context.Context, start catalog.Location, stops []catalog.Location, settings RouteSettings) (TravelCost, string) {
	points := make([]catalog.Location, 0, len(stops)+2)
	points = append(points, start)
	points = append(points, stops...)
	points = append(points, start)

	d, source := e.directions(ctx, points)
	return ComputeTravelCost(d, len(stops), settings, source), d.Polyline
}

// directions asks the provider once and falls back to the estimate.
func (e *TravelEstimator) directions(ctx context.Context, points []catalog.Location) (Directions, TravelSource) {
	if e.provider == nil {
		e.metrics.RecordProviderOutcome(OutcomeDisabled)
		return FallbackDirections(points, e.config), TravelSourceEstimate
	}

	if !e.breaker.Allow(ctx) {
		e.metrics.RecordProviderOutcome(OutcomeCircuitOpen)
		e.logger.Warn().Str("reason", "circuit_open").Msg("Route provider skipped, using estimate")
		return FallbackDirections(points, e.config), TravelSourceEstimate
	}

	d, err := e.callProvider(ctx, points)
	switch {
	case err == nil:
		e.breaker.RecordSuccess()
		e.metrics.RecordProviderOutcome(OutcomeOK)
		return d, TravelSourceProvider

	case errors.Is(err, ErrProviderBusy):
		e.breaker.Release()
		e.metrics.RecordProviderOutcome(OutcomeRateLimited)
		e.logger.Warn().Err(err).Str("reason", "rate_limited").Msg("Route provider refused call, using estimate")

	case ctx.Err() != nil:
		// The caller gave up; the provider is not to blame.
		e.breaker.Release()
		e.metrics.RecordProviderOutcome(OutcomeError)
		e.logger.Warn().Err(err).Str("reason", "cancelled").Msg("Route provider call cancelled, using estimate")

	default:
		e.breaker.RecordFailure(err)
		e.metrics.RecordProviderOutcome(OutcomeError)
		e.logger.Warn().Err(err).Str("reason", "error").Msg("Route provider failed, using estimate")
	}

	return FallbackDirections(points, e.config), TravelSourceEstimate
}

// callProvider makes the single bounded provider attempt and validates the answer.
func (e *TravelEstimator) callProvider(ctx context.Context, points []catalog.Location) (Directions, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "optimizer.route_provider")
	defer span.End()
	span.SetAttributes(attribute.Int("route.points", len(points)))

	ctx, cancel := context.WithTimeout(ctx, e.config.ProviderTimeout)
	defer cancel()

	start := time.Now()
	d, err := e.provider.Directions(ctx, points)
	if !errors.Is(err, ErrProviderBusy) {
		e.metrics.RecordProviderDuration(time.Since(start))
	}
	if err == nil && !validDirections(d) {
		err = errInvalidDirections
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Directions{}, err
	}

	span.SetAttributes(
		attribute.Float64("route.distance_km", d.DistanceKm),
		attribute.Float64("route.duration_minutes", d.DurationMinutes),
	)
	return d, nil
}

var errInvalidDirections = errors.New("route provider returned negative or non-finite figures")

func validDirections(d Directions) bool {
	for _, v := range []float64{d.DistanceKm, d.DurationMinutes} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FallbackDirections estimates driving distance and time from the planar
// length of the path: degrees are converted to kilometres, inflated for road
// curvature and driven at a constant average speed.
func FallbackDirections(points []catalog.Location, config *Config) Directions {
	km := PathDistance(points) * config.KmPerDegree * config.RoadCurvature
	return Directions{
		DistanceKm:      km,
		DurationMinutes: km / config.AverageSpeedKmh * 60,
	}
}

// ComputeTravelCost turns directions into a cost breakdown. Costs are priced
// from the unrounded distance and time; distances are then reported to 2
// decimals, minutes to 1 decimal and money to cents, so Total is exactly
// GasCost + TimeCost.
func ComputeTravelCost(d Directions, stops int, settings RouteSettings, source TravelSource) TravelCost {
	storeMinutes := float64(stops * settings.TimePerStoreMinutes)
	tripMinutes := d.DurationMinutes + storeMinutes

	gas := catalog.CentsFromFloat(d.DistanceKm / 100 * settings.FuelEfficiency * settings.GasPricePerLiter)
	timeCost := catalog.CentsFromFloat(tripMinutes / 60 * settings.TimeValuePerHour)

	return TravelCost{
		DistanceKm:   roundTo(d.DistanceKm, 2),
		DriveMinutes: roundTo(d.DurationMinutes, 1),
		StoreMinutes: storeMinutes,
		TripMinutes:  roundTo(tripMinutes, 1),
		GasCost:      gas,
		TimeCost:     timeCost,
		Total:        gas + timeCost,
		Source:       source,
	}
}
