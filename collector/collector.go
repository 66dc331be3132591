package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"farm-weather-alert/datasource"
	"farm-weather-alert/metrics"
	"farm-weather-alert/models"
	"farm-weather-alert/notify"
	"farm-weather-alert/risk"
)

// Result describes one completed run
type Result struct {
	RunID       string
	Observation models.Observation
	Message     models.AlertMessage
	Sent        bool
}

// Collector fetches an observation for the farm, evaluates it and sends any alert
type Collector struct {
	source       datasource.WeatherSource
	evaluator    *risk.Evaluator
	notifier     *notify.Notifier
	location     datasource.Location
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewCollector creates a collector for a single farm location
func NewCollector(
	source datasource.WeatherSource,
	evaluator *risk.Evaluator,
	notifier *notify.Notifier,
	location datasource.Location,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		source:       source,
		evaluator:    evaluator,
		notifier:     notifier,
		location:     location,
		fetchTimeout: 10 * time.Second, // Default timeout
		now:          time.Now,
		logger:       logger,
	}
}

// SetFetchTimeout changes the timeout for weather API requests
func (c *Collector) SetFetchTimeout(timeout time.Duration) {
	c.fetchTimeout = timeout
}

// RunOnce performs a single fetch, evaluate and notify cycle.
func (c *Collector) RunOnce(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := c.logger.With("run_id", res.RunID)

	obs, err := c.fetch(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return res, err
	}
	obs.Timestamp = c.now().In(c.zone())
	res.Observation = obs

	metrics.LastTemperature.Set(obs.Temperature)
	metrics.LastHumidity.Set(float64(obs.Humidity))
	logger.Info("observation received",
		"provider", obs.Provider,
		"location", obs.Location,
		"temperature", obs.Temperature,
		"humidity", obs.Humidity,
	)

	res.Message = c.evaluator.Evaluate(obs)
	for _, seg := range res.Message.Segments {
		metrics.AlertSegmentsTotal.WithLabelValues(string(seg.Kind)).Inc()
	}

	sent, err := c.notifier.Notify(ctx, res.Message)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(c.notifier.Channel(), "error").Inc()
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return res, err
	}
	if sent {
		metrics.NotificationsTotal.WithLabelValues(c.notifier.Channel(), "sent").Inc()
	}
	res.Sent = sent

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	logger.Info("run complete",
		"segments", len(res.Message.Segments),
		"sent", sent,
	)
	return res, nil
}

// Start runs immediately and then on every tick until ctx is done.
// Failed runs are logged and do not stop the loop.
func (c *Collector) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.runLogged(ctx)

	for {
		select {
		case <-ticker.C:
			c.runLogged(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Collector) zone() *time.Location {
	if z := c.evaluator.Rules().Zone; z != nil {
		return z
	}
	return risk.IST
}

func (c *Collector) runLogged(ctx context.Context) {
	res, err := c.RunOnce(ctx)
	if err != nil {
		c.logger.Error("run failed", "run_id", res.RunID, "error", err)
	}
}

// fetch performs a single fetch from the weather source
func (c *Collector) fetch(ctx context.Context) (models.Observation, error) {
	// Create a context with timeout for this specific request
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	obs, err := c.source.FetchObservation(fetchCtx, c.location)
	metrics.FetchDuration.WithLabelValues(c.source.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchErrorsTotal.WithLabelValues(c.source.Name()).Inc()
		return models.Observation{}, fmt.Errorf("error fetching from %s for %s: %w", c.source.Name(), c.location, err)
	}
	return obs, nil
}
