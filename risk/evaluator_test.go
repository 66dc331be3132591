package risk

import (
	"strings"
	"testing"
	"time"

	"farm-weather-alert/models"
)

// noon is outside the summary hour.
var noon = time.Date(2026, 10, 16, 12, 0, 0, 0, IST)

func obsAt(temp float64, humidity int, at time.Time) models.Observation {
	return models.Observation{Temperature: temp, Humidity: humidity, Timestamp: at}
}

func TestEvaluate_ComfortableBandIsEmpty(t *testing.T) {
	e := NewEvaluator(DefaultRules())

	for _, tt := range []struct {
		temp     float64
		humidity int
	}{
		{temp: 25, humidity: 55},
		{temp: 25, humidity: 65},
		{temp: 25, humidity: 70},
		{temp: 35, humidity: 75}, // too hot for either crop
		{temp: 10, humidity: 74},
	} {
		msg := e.Evaluate(obsAt(tt.temp, tt.humidity, noon))
		if !msg.Empty() {
			t.Errorf("Evaluate(%.1f°C, %d%%) = %q; want empty", tt.temp, tt.humidity, msg.String())
		}
	}
}

func TestEvaluate_DiseaseRisk(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		humidity int
		chrys    bool
		rose     bool
	}{
		{name: "chrysanthemum only", temp: 19, humidity: 72, chrys: true},
		{name: "both in overlap", temp: 25, humidity: 80, chrys: true, rose: true},
		{name: "rose above chrysanthemum band", temp: 29, humidity: 76, rose: true},
		{name: "rose lower bound inclusive", temp: 20, humidity: 76, chrys: true, rose: true},
		{name: "rose upper bound inclusive", temp: 30, humidity: 76, rose: true},
		{name: "chrysanthemum bounds inclusive", temp: 18, humidity: 71, chrys: true},
		{name: "humidity threshold is strict", temp: 24, humidity: 70},
		{name: "rose humidity threshold is strict", temp: 29, humidity: 75},
		{name: "too cold", temp: 17.9, humidity: 90},
		{name: "too hot", temp: 30.1, humidity: 90},
	}

	e := NewEvaluator(DefaultRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Evaluate(obsAt(tt.temp, tt.humidity, noon)).String()
			gotChrys := strings.Contains(out, "Chrysanthemum: ⚠ High risk of Leaf Spot & Powdery Mildew")
			gotRose := strings.Contains(out, "Rose: ⚠ High risk of Black Spot & Downy Mildew")
			if gotChrys != tt.chrys {
				t.Errorf("chrysanthemum alert = %v; want %v (message %q)", gotChrys, tt.chrys, out)
			}
			if gotRose != tt.rose {
				t.Errorf("rose alert = %v; want %v (message %q)", gotRose, tt.rose, out)
			}
		})
	}
}

func TestEvaluate_HumidityAlert(t *testing.T) {
	e := NewEvaluator(DefaultRules())

	low := e.Evaluate(obsAt(25, 40, noon))
	if low.Count(models.SegmentHumidity) != 1 || !strings.Contains(low.String(), "below the 55% minimum") {
		t.Errorf("low humidity message = %q", low.String())
	}

	high := e.Evaluate(obsAt(35, 90, noon))
	if high.Count(models.SegmentHumidity) != 1 || !strings.Contains(high.String(), "above the 75% maximum") {
		t.Errorf("high humidity message = %q", high.String())
	}
	if high.Count(models.SegmentDisease) != 0 {
		t.Errorf("35°C should not raise disease alerts: %q", high.String())
	}
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	e := NewEvaluator(DefaultRules())
	at := time.Date(2026, 10, 16, 18, 5, 0, 0, IST)

	msg := e.Evaluate(obsAt(25, 82, at))

	want := []models.SegmentKind{
		models.SegmentDisease, // chrysanthemum
		models.SegmentDisease, // rose
		models.SegmentHumidity,
		models.SegmentSummary,
	}
	if len(msg.Segments) != len(want) {
		t.Fatalf("got %d segments; want %d: %q", len(msg.Segments), len(want), msg.String())
	}
	for i, kind := range want {
		if msg.Segments[i].Kind != kind {
			t.Errorf("segment %d kind = %q; want %q", i, msg.Segments[i].Kind, kind)
		}
	}
	if !strings.HasPrefix(msg.Segments[0].Text, "🌼 Chrysanthemum") {
		t.Errorf("first disease line = %q; want chrysanthemum first", msg.Segments[0].Text)
	}
}

func TestEvaluate_SummaryAtSummaryHour(t *testing.T) {
	e := NewEvaluator(DefaultRules())

	t.Run("appended even when nothing else applies", func(t *testing.T) {
		at := time.Date(2026, 10, 16, 18, 0, 0, 0, IST)
		msg := e.Evaluate(obsAt(24.46, 65, at))

		if len(msg.Segments) != 1 || msg.Segments[0].Kind != models.SegmentSummary {
			t.Fatalf("segments = %+v; want only the summary", msg.Segments)
		}
		want := strings.Join([]string{
			"📍 Daily Weather Report",
			"🕒 16-10-2026 18:00",
			"🌡 Temperature: 24.46°C",
			"💧 Humidity: 65%",
			"🌼 Chrysanthemum: ✅ Disease risk low",
			"🌹 Rose: ✅ Disease risk low",
		}, "\n")
		if got := msg.String(); got != want {
			t.Errorf("summary =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("gate uses IST regardless of input zone", func(t *testing.T) {
		// 12:45 UTC is 18:15 IST.
		at := time.Date(2026, 10, 16, 12, 45, 0, 0, time.UTC)
		msg := e.Evaluate(obsAt(24, 65, at))
		if msg.Count(models.SegmentSummary) != 1 {
			t.Errorf("summary missing at 18:15 IST: %q", msg.String())
		}
		if !strings.Contains(msg.String(), "16-10-2026 18:15") {
			t.Errorf("summary timestamp not in IST: %q", msg.String())
		}
	})

	t.Run("not appended outside the hour", func(t *testing.T) {
		for _, hour := range []int{0, 6, 17, 19, 23} {
			at := time.Date(2026, 10, 16, hour, 59, 0, 0, IST)
			if msg := e.Evaluate(obsAt(24, 65, at)); !msg.Empty() {
				t.Errorf("hour %d: message = %q; want empty", hour, msg.String())
			}
		}
	})

	t.Run("summary reports crop risk", func(t *testing.T) {
		at := time.Date(2026, 10, 16, 18, 30, 0, 0, IST)
		msg := e.Evaluate(obsAt(22, 78, at))
		summary := msg.Segments[len(msg.Segments)-1]
		if summary.Kind != models.SegmentSummary {
			t.Fatalf("last segment kind = %q; want summary", summary.Kind)
		}
		if !strings.Contains(summary.Text, "🌹 Rose: ⚠ High risk of Black Spot & Downy Mildew") {
			t.Errorf("summary = %q; want rose risk", summary.Text)
		}
	})
}

func TestEvaluate_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.HumidityMin = 40
	rules.HumidityMax = 90
	rules.SummaryHour = 7
	e := NewEvaluator(rules)

	if msg := e.Evaluate(obsAt(35, 85, noon)); !msg.Empty() {
		t.Errorf("message = %q; want empty within widened band", msg.String())
	}
	at := time.Date(2026, 10, 16, 7, 0, 0, 0, IST)
	if msg := e.Evaluate(obsAt(35, 85, at)); msg.Count(models.SegmentSummary) != 1 {
		t.Errorf("summary missing at custom hour 7")
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("DefaultRules().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{name: "min equals max", mutate: func(r *Rules) { r.HumidityMin = 75 }},
		{name: "min above max", mutate: func(r *Rules) { r.HumidityMin = 80 }},
		{name: "negative hour", mutate: func(r *Rules) { r.SummaryHour = -1 }},
		{name: "hour 24", mutate: func(r *Rules) { r.SummaryHour = 24 }},
		{name: "nil zone", mutate: func(r *Rules) { r.Zone = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("Validate() = nil; want error")
			}
		})
	}
}

func TestEvaluate_ReportsTemperatureUnrounded(t *testing.T) {
	e := NewEvaluator(DefaultRules())
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, IST)

	tests := []struct {
		name     string
		temp     float64
		humidity int
		want     string
	}{
		{name: "low humidity", temp: 31.27, humidity: 40, want: "(🌡 31.27°C)"},
		{name: "high humidity", temp: 12.05, humidity: 90, want: "(🌡 12.05°C)"},
		{name: "whole degrees", temp: 15, humidity: 90, want: "(🌡 15°C)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := e.Evaluate(obsAt(tt.temp, tt.humidity, at))
			if !strings.Contains(msg.String(), tt.want) {
				t.Errorf("message %q does not contain %q", msg.String(), tt.want)
			}
		})
	}
}
