package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"farm-weather-alert/models"
	"farm-weather-alert/risk"
)

func main() {
	// Parse command-line flags
	temperature := flag.Float64("temp", 25, "Temperature in °C")
	humidity := flag.Int("humidity", 60, "Relative humidity in %")
	hour := flag.Int("hour", -1, "Hour of day in IST (default: current hour)")
	humidityMin := flag.Int("humidity-min", 55, "Lower bound of the comfortable humidity band")
	humidityMax := flag.Int("humidity-max", 75, "Upper bound of the comfortable humidity band")
	summaryHour := flag.Int("summary-hour", 18, "Hour of day in IST at which the daily report is added")
	flag.Parse()

	rules := risk.DefaultRules()
	rules.HumidityMin = *humidityMin
	rules.HumidityMax = *humidityMax
	rules.SummaryHour = *summaryHour
	if err := rules.Validate(); err != nil {
		log.Fatalf("Invalid rules: %v", err)
	}

	at := time.Now().In(rules.Zone)
	if *hour >= 0 {
		if *hour > 23 {
			log.Fatalf("Invalid hour %d (allowed: 0-23)", *hour)
		}
		at = time.Date(at.Year(), at.Month(), at.Day(), *hour, 0, 0, 0, rules.Zone)
	}

	obs := models.Observation{
		Temperature: *temperature,
		Humidity:    *humidity,
		Timestamp:   at,
		Provider:    "preview",
	}

	msg := risk.NewEvaluator(rules).Evaluate(obs)

	fmt.Printf("Observation: %.1f°C, %d%% at %s\n", obs.Temperature, obs.Humidity, at.Format("02-01-2006 15:04 MST"))
	if msg.Empty() {
		fmt.Println("No alert: nothing would be sent.")
		return
	}

	fmt.Printf("Segments: %d disease, %d humidity, %d summary\n\n",
		msg.Count(models.SegmentDisease),
		msg.Count(models.SegmentHumidity),
		msg.Count(models.SegmentSummary),
	)
	fmt.Println(msg.String())
}
