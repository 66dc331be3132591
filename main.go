package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"farm-weather-alert/cache"
	"farm-weather-alert/collector"
	"farm-weather-alert/config"
	"farm-weather-alert/datasource"
	"farm-weather-alert/logging"
	"farm-weather-alert/metrics"
	"farm-weather-alert/notify"
	"farm-weather-alert/providers/openweathermap"
	"farm-weather-alert/providers/weatherapi"
	"farm-weather-alert/risk"
)

const appName = "farm-weather-alert"

// Overridden with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Parse command line arguments
	envFile := flag.String("env-file", ".env", "Path to a .env file")
	configFile := flag.String("config", "", "Optional YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "Log the message instead of sending it")
	flag.Parse()

	// Load environment variables from .env file
	envErr := godotenv.Load(*envFile)

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Warn("could not load env file", "path", *envFile, "error", envErr)
	}

	logger.Info("starting",
		"version", version,
		"provider", cfg.WeatherProvider,
		"notifier", cfg.Notifier,
		"dry_run", *dryRun,
		"interval", cfg.RunInterval.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *dryRun, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, dryRun bool, logger *slog.Logger) error {
	source := buildSource(cfg, logger)

	channel, err := buildChannel(cfg, dryRun, logger)
	if err != nil {
		return err
	}
	if closer, ok := channel.(interface{ Close() }); ok {
		defer closer.Close()
	}

	rules := risk.DefaultRules()
	rules.HumidityMin = cfg.HumidityMin
	rules.HumidityMax = cfg.HumidityMax
	rules.SummaryHour = cfg.SummaryHour
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	c := collector.NewCollector(
		source,
		risk.NewEvaluator(rules),
		notify.NewNotifier(channel, logger),
		datasource.Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
		logger,
	)
	c.SetFetchTimeout(cfg.FetchTimeout)

	if cfg.RunInterval == 0 {
		return runOnce(ctx, c, cfg, logger)
	}
	return runPeriodic(ctx, c, cfg, logger)
}

func runOnce(ctx context.Context, c *collector.Collector, cfg config.Config, logger *slog.Logger) error {
	_, runErr := c.RunOnce(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, "farm_weather_alert"); err != nil {
			logger.Warn("metrics push failed", "url", cfg.PushgatewayURL, "error", err)
		}
	}
	return runErr
}

func runPeriodic(ctx context.Context, c *collector.Collector, cfg config.Config, logger *slog.Logger) error {
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return c.Start(ctx, cfg.RunInterval)
}

// buildSource creates the configured provider. In periodic mode it is wrapped
// with a rate limiter and, when a TTL is set, a cache.
func buildSource(cfg config.Config, logger *slog.Logger) datasource.WeatherSource {
	var source datasource.WeatherSource
	switch cfg.WeatherProvider {
	case "weatherapi":
		source = weatherapi.NewSource(cfg.WeatherAPIKey, cfg.FetchTimeout)
	default:
		source = openweathermap.NewSource(cfg.OpenWeatherKey, cfg.FetchTimeout)
	}

	if cfg.RunInterval == 0 {
		return source
	}

	source = datasource.NewRateLimitedSource(source, cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug("applied rate limiting", "provider", source.Name(), "rps", cfg.RateLimitRPS)

	if cfg.CacheTTL > 0 {
		source = cache.NewCachedSource(source, cfg.CacheTTL, logger)
	}
	return source
}

func buildChannel(cfg config.Config, dryRun bool, logger *slog.Logger) (notify.Channel, error) {
	if dryRun {
		return notify.NewLogChannel(logger), nil
	}

	switch cfg.Notifier {
	case "twilio":
		ch, err := notify.NewTwilioChannel(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.To)
		if err != nil {
			return nil, err
		}
		return ch, nil
	case "telegram":
		ch, err := notify.NewTelegramChannel(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		return ch, nil
	case "mqtt":
		ch, err := notify.NewMQTTChannel(notify.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
		}, logger)
		if err != nil {
			return nil, err
		}
		return ch, nil
	case "log":
		return notify.NewLogChannel(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
