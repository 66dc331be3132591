// Package risk maps a weather observation to the alert segments worth sending.
package risk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"farm-weather-alert/models"
)

// IST is India Standard Time (UTC+5:30), the zone the daily summary is scheduled in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// CropRule flags a crop as at risk when humidity is strictly above HumidityAbove
// and the temperature is within [MinTemp, MaxTemp].
type CropRule struct {
	Crop          string
	Icon          string
	Diseases      string
	HumidityAbove int
	MinTemp       float64
	MaxTemp       float64
}

var (
	Chrysanthemum = CropRule{
		Crop:          "Chrysanthemum",
		Icon:          "🌼",
		Diseases:      "Leaf Spot & Powdery Mildew",
		HumidityAbove: 70,
		MinTemp:       18,
		MaxTemp:       28,
	}
	Rose = CropRule{
		Crop:          "Rose",
		Icon:          "🌹",
		Diseases:      "Black Spot & Downy Mildew",
		HumidityAbove: 75,
		MinTemp:       20,
		MaxTemp:       30,
	}
)

// AtRisk reports whether the observation meets both the humidity and temperature band.
func (r CropRule) AtRisk(obs models.Observation) bool {
	return obs.Humidity > r.HumidityAbove &&
		obs.Temperature >= r.MinTemp &&
		obs.Temperature <= r.MaxTemp
}

// Status is the one-line crop status used in alerts and the daily summary.
func (r CropRule) Status(obs models.Observation) string {
	if r.AtRisk(obs) {
		return fmt.Sprintf("%s %s: ⚠ High risk of %s", r.Icon, r.Crop, r.Diseases)
	}
	return fmt.Sprintf("%s %s: ✅ Disease risk low", r.Icon, r.Crop)
}

// Rules holds the thresholds the evaluator applies.
type Rules struct {
	// HumidityMin and HumidityMax bound the comfortable band; values outside it alert.
	HumidityMin int
	HumidityMax int

	// SummaryHour is the hour of day, in Zone, at which the daily report is appended.
	SummaryHour int
	Zone        *time.Location

	// Crops are checked in order.
	Crops []CropRule
}

// DefaultRules returns the thresholds used at the farm.
func DefaultRules() Rules {
	return Rules{
		HumidityMin: 55,
		HumidityMax: 75,
		SummaryHour: 18,
		Zone:        IST,
		Crops:       []CropRule{Chrysanthemum, Rose},
	}
}

// Validate checks the rules are usable.
func (r Rules) Validate() error {
	if r.HumidityMin >= r.HumidityMax {
		return fmt.Errorf("humidity min %d must be below max %d", r.HumidityMin, r.HumidityMax)
	}
	if r.SummaryHour < 0 || r.SummaryHour > 23 {
		return fmt.Errorf("summary hour %d out of range (0-23)", r.SummaryHour)
	}
	if r.Zone == nil {
		return fmt.Errorf("summary zone is required")
	}
	return nil
}

// Evaluator applies Rules to observations. It holds no state between calls.
type Evaluator struct {
	rules Rules
}

func NewEvaluator(rules Rules) *Evaluator {
	return &Evaluator{rules: rules}
}

// Rules returns the thresholds in use.
func (e *Evaluator) Rules() Rules {
	return e.rules
}

// Evaluate builds the alert message for an observation: disease risk lines first, then a
// humidity alert, then the daily summary when the observation falls in the summary hour.
// The message is empty when nothing applies.
func (e *Evaluator) Evaluate(obs models.Observation) models.AlertMessage {
	var msg models.AlertMessage

	for _, crop := range e.rules.Crops {
		if crop.AtRisk(obs) {
			msg.Add(models.SegmentDisease, crop.Status(obs))
		}
	}

	switch {
	case obs.Humidity < e.rules.HumidityMin:
		msg.Add(models.SegmentHumidity, fmt.Sprintf(
			"🚨 HUMIDITY ALERT! %d%% is below the %d%% minimum (🌡 %s°C)",
			obs.Humidity, e.rules.HumidityMin, formatTemp(obs.Temperature)))
	case obs.Humidity > e.rules.HumidityMax:
		msg.Add(models.SegmentHumidity, fmt.Sprintf(
			"🚨 HUMIDITY ALERT! %d%% is above the %d%% maximum (🌡 %s°C)",
			obs.Humidity, e.rules.HumidityMax, formatTemp(obs.Temperature)))
	}

	if e.SummaryDue(obs.Timestamp) {
		msg.Add(models.SegmentSummary, e.summary(obs))
	}

	return msg
}

// SummaryDue reports whether t falls in the summary hour of the rules' zone.
func (e *Evaluator) SummaryDue(t time.Time) bool {
	return t.In(e.zone()).Hour() == e.rules.SummaryHour
}

func (e *Evaluator) zone() *time.Location {
	if e.rules.Zone == nil {
		return IST
	}
	return e.rules.Zone
}

func (e *Evaluator) summary(obs models.Observation) string {
	var b strings.Builder
	b.WriteString("📍 Daily Weather Report\n")
	fmt.Fprintf(&b, "🕒 %s\n", obs.Timestamp.In(e.zone()).Format("02-01-2006 15:04"))
	fmt.Fprintf(&b, "🌡 Temperature: %s°C\n", formatTemp(obs.Temperature))
	fmt.Fprintf(&b, "💧 Humidity: %d%%", obs.Humidity)
	for _, crop := range e.rules.Crops {
		b.WriteString("\n")
		b.WriteString(crop.Status(obs))
	}
	return b.String()
}

// formatTemp prints the temperature as reported, without rounding.
func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
