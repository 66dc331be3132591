package datasource

import (
	"context"
	"fmt"

	"farm-weather-alert/models"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a WeatherSource with rate limiting
type RateLimitedSource struct {
	source  WeatherSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedSource creates a new rate limited weather source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source WeatherSource, rps float64, burst int) *RateLimitedSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchObservation fetches current conditions, respecting rate limits
func (r *RateLimitedSource) FetchObservation(ctx context.Context, loc Location) (models.Observation, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Observation{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	return r.source.FetchObservation(ctx, loc)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.name
}

var _ WeatherSource = (*RateLimitedSource)(nil)
