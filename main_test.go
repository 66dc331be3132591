package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"farm-weather-alert/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildSource(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "one-shot openweathermap",
			cfg:  config.Config{WeatherProvider: "openweathermap", FetchTimeout: time.Second},
			want: "OpenWeatherMap",
		},
		{
			name: "one-shot weatherapi",
			cfg:  config.Config{WeatherProvider: "weatherapi", FetchTimeout: time.Second},
			want: "WeatherAPI",
		},
		{
			name: "one-shot ignores cache ttl",
			cfg:  config.Config{WeatherProvider: "openweathermap", FetchTimeout: time.Second, CacheTTL: 10 * time.Minute},
			want: "OpenWeatherMap",
		},
		{
			name: "periodic is rate limited",
			cfg: config.Config{
				WeatherProvider: "openweathermap",
				FetchTimeout:    time.Second,
				RunInterval:     time.Hour,
				RateLimitRPS:    1,
				RateLimitBurst:  1,
			},
			want: "OpenWeatherMap [Rate Limited]",
		},
		{
			name: "periodic with cache",
			cfg: config.Config{
				WeatherProvider: "weatherapi",
				FetchTimeout:    time.Second,
				RunInterval:     time.Hour,
				RateLimitRPS:    1,
				RateLimitBurst:  1,
				CacheTTL:        10 * time.Minute,
			},
			want: "WeatherAPI [Rate Limited] [Cached]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSource(tt.cfg, discardLogger()).Name()
			if got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildChannel(t *testing.T) {
	twilioCfg := config.Config{
		Notifier: "twilio",
		Twilio: config.Twilio{
			AccountSID: "AC123",
			AuthToken:  "token",
			From:       "whatsapp:+14155238886",
			To:         "whatsapp:+919800000000",
		},
	}

	tests := []struct {
		name    string
		cfg     config.Config
		dryRun  bool
		want    string
		wantErr bool
	}{
		{name: "twilio", cfg: twilioCfg, want: "twilio"},
		{name: "dry run overrides notifier", cfg: twilioCfg, dryRun: true, want: "log"},
		{name: "log", cfg: config.Config{Notifier: "log"}, want: "log"},
		{
			name: "mqtt",
			cfg:  config.Config{Notifier: "mqtt", MQTT: config.MQTT{Broker: "localhost", Port: 1883, ClientID: "x", Topic: "farm/alerts"}},
			want: "mqtt",
		},
		{name: "twilio without credentials", cfg: config.Config{Notifier: "twilio"}, wantErr: true},
		{name: "unknown", cfg: config.Config{Notifier: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := buildChannel(tt.cfg, tt.dryRun, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildChannel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if ch != nil {
					t.Errorf("buildChannel() channel = %v, want nil", ch)
				}
				return
			}
			if ch.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", ch.Name(), tt.want)
			}
		})
	}
}
