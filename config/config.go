package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ErrMissingEnv is returned when a variable required by the selected provider or channel is unset.
var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	WeatherProvider string
	OpenWeatherKey  string
	WeatherAPIKey   string
	FetchTimeout    time.Duration

	Latitude  float64
	Longitude float64

	HumidityMin int
	HumidityMax int
	SummaryHour int

	Notifier string
	Twilio   Twilio
	Telegram Telegram
	MQTT     MQTT

	// RunInterval of zero means run once and exit.
	RunInterval    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CacheTTL       time.Duration

	MetricsAddr    string
	PushgatewayURL string
}

type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

type Telegram struct {
	BotToken string
	ChatID   int64
}

type MQTT struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
}

var defaults = map[string]any{
	"app_env":          "dev",
	"log_level":        "info",
	"weather_provider": "openweathermap",
	"fetch_timeout":    "10s",
	"farm_lat":         17.0544053,
	"farm_lon":         74.6122866,
	"humidity_min":     55,
	"humidity_max":     75,
	"summary_hour":     18,
	"notifier":         "twilio",
	"mqtt_broker":      "localhost",
	"mqtt_port":        1883,
	"mqtt_client_id":   "farm-weather-alert",
	"mqtt_topic":       "farm/alerts",
	"run_interval":     "0s",
	"rate_limit_rps":   1.0,
	"rate_limit_burst": 1,
	"cache_ttl":        "0s",
}

// Load reads configuration from the environment, layered over an optional YAML
// file. Keys in the file are the lower-case variable names, e.g. farm_lat.
func Load(configFile string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", configFile, err)
		}
	}

	r := reader{v: v}

	appEnv := r.str("app_env")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(r.str("log_level"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		WeatherProvider: strings.ToLower(r.str("weather_provider")),
		OpenWeatherKey:  r.str("openweather_api_key"),
		WeatherAPIKey:   r.str("weatherapi_key"),
		FetchTimeout:    r.duration("fetch_timeout"),
		Latitude:        r.float("farm_lat"),
		Longitude:       r.float("farm_lon"),
		HumidityMin:     r.integer("humidity_min"),
		HumidityMax:     r.integer("humidity_max"),
		SummaryHour:     r.integer("summary_hour"),
		Notifier:        strings.ToLower(r.str("notifier")),
		Twilio: Twilio{
			AccountSID: r.str("twilio_account_sid"),
			AuthToken:  r.str("twilio_auth_token"),
			From:       r.str("twilio_whatsapp_from"),
			To:         r.str("twilio_whatsapp_to"),
		},
		Telegram: Telegram{
			BotToken: r.str("telegram_bot_token"),
			ChatID:   r.int64("telegram_chat_id"),
		},
		MQTT: MQTT{
			Broker:   r.str("mqtt_broker"),
			Port:     r.integer("mqtt_port"),
			ClientID: r.str("mqtt_client_id"),
			Topic:    r.str("mqtt_topic"),
		},
		RunInterval:    r.duration("run_interval"),
		RateLimitRPS:   r.float("rate_limit_rps"),
		RateLimitBurst: r.integer("rate_limit_burst"),
		CacheTTL:       r.duration("cache_ttl"),
		MetricsAddr:    r.str("metrics_addr"),
		PushgatewayURL: r.str("pushgateway_url"),
	}
	if r.err != nil {
		return Config{}, r.err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.WeatherProvider {
	case "openweathermap":
		if c.OpenWeatherKey == "" {
			return fmt.Errorf("%w: OPENWEATHER_API_KEY", ErrMissingEnv)
		}
	case "weatherapi":
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("%w: WEATHERAPI_KEY", ErrMissingEnv)
		}
	default:
		return fmt.Errorf("invalid WEATHER_PROVIDER %q (allowed: openweathermap, weatherapi)", c.WeatherProvider)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("FARM_LAT %v out of range (-90..90)", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("FARM_LON %v out of range (-180..180)", c.Longitude)
	}
	if c.HumidityMin >= c.HumidityMax {
		return fmt.Errorf("HUMIDITY_MIN %d must be below HUMIDITY_MAX %d", c.HumidityMin, c.HumidityMax)
	}
	if c.SummaryHour < 0 || c.SummaryHour > 23 {
		return fmt.Errorf("SUMMARY_HOUR %d out of range (0-23)", c.SummaryHour)
	}

	switch c.Notifier {
	case "twilio":
		required := []struct{ name, val string }{
			{"TWILIO_ACCOUNT_SID", c.Twilio.AccountSID},
			{"TWILIO_AUTH_TOKEN", c.Twilio.AuthToken},
			{"TWILIO_WHATSAPP_FROM", c.Twilio.From},
			{"TWILIO_WHATSAPP_TO", c.Twilio.To},
		}
		for _, req := range required {
			if req.val == "" {
				return fmt.Errorf("%w: %s", ErrMissingEnv, req.name)
			}
		}
	case "telegram":
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN", ErrMissingEnv)
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID", ErrMissingEnv)
		}
	case "mqtt":
		if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
			return fmt.Errorf("%w: MQTT_BROKER and MQTT_TOPIC", ErrMissingEnv)
		}
	case "log":
	default:
		return fmt.Errorf("invalid NOTIFIER %q (allowed: twilio, telegram, mqtt, log)", c.Notifier)
	}

	if c.RunInterval < 0 {
		return fmt.Errorf("RUN_INTERVAL must not be negative, got %v", c.RunInterval)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %v", c.CacheTTL)
	}
	return nil
}

// reader converts viper values and keeps the first conversion error.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", strings.ToUpper(key), r.v.GetString(key), err)
	}
}

func (r *reader) float(key string) float64 {
	f, err := cast.ToFloat64E(trimmed(r.v.Get(key)))
	if err != nil {
		r.fail(key, err)
	}
	return f
}

func (r *reader) integer(key string) int {
	return int(r.int64(key))
}

// int64 reads strings as base 10, so a zero-padded "08" is eight rather than
// an octal literal. Typed values from a YAML file go through cast.
func (r *reader) int64(key string) int64 {
	raw := trimmed(r.v.Get(key))
	if raw == nil || raw == "" {
		return 0
	}

	var (
		i   int64
		err error
	)
	if s, ok := raw.(string); ok {
		i, err = strconv.ParseInt(s, 10, 64)
	} else {
		i, err = cast.ToInt64E(raw)
	}
	if err != nil {
		r.fail(key, err)
	}
	return i
}

func (r *reader) duration(key string) time.Duration {
	d, err := cast.ToDurationE(trimmed(r.v.Get(key)))
	if err != nil {
		r.fail(key, err)
	}
	return d
}

func trimmed(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
