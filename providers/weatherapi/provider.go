package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"farm-weather-alert/datasource"
	"farm-weather-alert/models"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// Source is an implementation of the WeatherSource interface for WeatherAPI.com
type Source struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Ensure Source implements datasource.WeatherSource
var _ datasource.WeatherSource = (*Source)(nil)

// NewSource creates a new WeatherAPI source with a fixed request timeout
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
func (w *Source) SetBaseURL(baseURL string) {
	w.baseURL = baseURL
}

// Name returns the name of this data source
func (w *Source) Name() string {
	return "WeatherAPI"
}

// currentResponse is the subset of current.json we read
type currentResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current *struct {
		TempC    *float64 `json:"temp_c"`
		Humidity *int     `json:"humidity"`
	} `json:"current"`
}

// FetchObservation fetches current conditions from the WeatherAPI.com API
func (w *Source) FetchObservation(ctx context.Context, loc datasource.Location) (models.Observation, error) {
	// WeatherAPI takes "lat,lon" in the q parameter
	params := url.Values{}
	params.Add("key", w.apiKey)
	params.Add("q", loc.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/current.json?"+params.Encode(), nil)
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.client.Do(req)
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

	var wapiResp currentResponse
	if err := json.Unmarshal(body, &wapiResp); err != nil {
		return models.Observation{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if wapiResp.Current == nil || wapiResp.Current.TempC == nil || wapiResp.Current.Humidity == nil {
		return models.Observation{}, fmt.Errorf("failed to parse response: %w", errors.New("missing current.temp_c or current.humidity"))
	}

	// Format the location with country if available
	location := loc.String()
	if wapiResp.Location.Name != "" && wapiResp.Location.Country != "" {
		location = fmt.Sprintf("%s,%s", wapiResp.Location.Name, wapiResp.Location.Country)
	}

	return models.Observation{
		Temperature: *wapiResp.Current.TempC,
		Humidity:    *wapiResp.Current.Humidity,
		Timestamp:   time.Now(),
		Provider:    w.Name(),
		Location:    location,
	}, nil
}
