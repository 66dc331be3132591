package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"farm-weather-alert/datasource"
	"farm-weather-alert/models"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Source is an implementation of the WeatherSource interface for OpenWeatherMap
type Source struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Ensure Source implements datasource.WeatherSource
var _ datasource.WeatherSource = (*Source)(nil)

// NewSource creates a new OpenWeatherMap source with a fixed request timeout
func NewSource(apiKey string, timeout time.Duration) *Source {
	return &Source{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL points the source at a different API root
func (o *Source) SetBaseURL(baseURL string) {
	o.baseURL = baseURL
}

// Name returns the name of this data source
func (o *Source) Name() string {
	return "OpenWeatherMap"
}

// currentResponse is the subset of the current weather payload we read
type currentResponse struct {
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Name string `json:"name"`
}

// FetchObservation fetches current conditions from the OpenWeatherMap API
func (o *Source) FetchObservation(ctx context.Context, loc datasource.Location) (models.Observation, error) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Add("appid", o.apiKey)
	params.Add("units", "metric") // Use metric units

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.Observation{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var owmResp currentResponse
	if err := json.Unmarshal(body, &owmResp); err != nil {
		return models.Observation{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if owmResp.Main == nil || owmResp.Main.Temp == nil || owmResp.Main.Humidity == nil {
		return models.Observation{}, fmt.Errorf("failed to parse response: %w", errors.New("missing main.temp or main.humidity"))
	}

	location := owmResp.Name
	if location == "" {
		location = loc.String()
	}

	return models.Observation{
		Temperature: *owmResp.Main.Temp,
		Humidity:    *owmResp.Main.Humidity,
		Timestamp:   time.Now(),
		Provider:    o.Name(),
		Location:    location,
	}, nil
}
