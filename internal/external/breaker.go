package external

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"fishcast/internal/types"
)

// BreakerSettings tunes a provider guard.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
}

// DefaultBreakerSettings trips after three failures and probes after a minute.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 3, Cooldown: time.Minute}
}

func newBreaker[T any](name string, s BreakerSettings) *gobreaker.CircuitBreaker[T] {
	if s.ConsecutiveFailures == 0 {
		s = DefaultBreakerSettings()
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// Cancellation by the caller is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// guardErr maps an open breaker to an upstream AppError and passes other
// errors through.
func guardErr(provider string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(types.ErrCodeUpstreamUnavailable, provider+" breaker open", err).
			WithDetails(map[string]any{"provider": provider})
	}
	return err
}

// GuardedWeather fails fast while the weather upstream keeps failing, so
// acquisition substitutes the fallback without waiting on timeouts.
type GuardedWeather struct {
	next WeatherProvider
	cb   *gobreaker.CircuitBreaker[types.WeatherReading]
}

// GuardWeather wraps next with a circuit breaker.
func GuardWeather(next WeatherProvider, s BreakerSettings) *GuardedWeather {
	return &GuardedWeather{next: next, cb: newBreaker[types.WeatherReading]("fishcast-"+ProviderWeather, s)}
}

// CurrentWeather implements WeatherProvider.
func (g *GuardedWeather) CurrentWeather(ctx context.Context, at types.Coordinates) (types.WeatherReading, error) {
	w, err := g.cb.Execute(func() (types.WeatherReading, error) {
		return g.next.CurrentWeather(ctx, at)
	})
	return w, guardErr(ProviderWeather, err)
}

// State reports the breaker state.
func (g *GuardedWeather) State() gobreaker.State { return g.cb.State() }

// GuardedMarine is the MarineProvider counterpart of GuardedWeather.
type GuardedMarine struct {
	next MarineProvider
	cb   *gobreaker.CircuitBreaker[types.SeaReading]
}

// GuardMarine wraps next with a circuit breaker.
func GuardMarine(next MarineProvider, s BreakerSettings) *GuardedMarine {
	return &GuardedMarine{next: next, cb: newBreaker[types.SeaReading]("fishcast-"+ProviderMarine, s)}
}

// SeaState implements MarineProvider.
func (g *GuardedMarine) SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error) {
	s, err := g.cb.Execute(func() (types.SeaReading, error) {
		return g.next.SeaState(ctx, at)
	})
	return s, guardErr(ProviderMarine, err)
}

// State reports the breaker state.
func (g *GuardedMarine) State() gobreaker.State { return g.cb.State() }

// GuardedReports is the ReportAggregator counterpart of GuardedWeather.
type GuardedReports struct {
	next ReportAggregator
	cb   *gobreaker.CircuitBreaker[*types.ReportAggregate]
}

// GuardReports wraps next with a circuit breaker.
func GuardReports(next ReportAggregator, s BreakerSettings) *GuardedReports {
	return &GuardedReports{next: next, cb: newBreaker[*types.ReportAggregate]("fishcast-"+ProviderReports, s)}
}

// Aggregate24h implements ReportAggregator.
func (g *GuardedReports) Aggregate24h(ctx context.Context, locationID string) (*types.ReportAggregate, error) {
	agg, err := g.cb.Execute(func() (*types.ReportAggregate, error) {
		return g.next.Aggregate24h(ctx, locationID)
	})
	return agg, guardErr(ProviderReports, err)
}
