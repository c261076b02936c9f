package meteostat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/analytics"
	"energydash/ports"
)

const (
	DefaultBaseURL = "https://meteostat.p.rapidapi.com"
	DefaultHost    = "meteostat.p.rapidapi.com"
)

// Config configures the Meteostat client
type Config struct {
	APIKey  string
	BaseURL string
	Host    string
	Timeout time.Duration
}

// Client fetches daily observations and station lists from the Meteostat
// RapidAPI endpoints.
type Client struct {
	apiKey  string
	baseURL string
	host    string
	http    *http.Client
}

var _ ports.WeatherProvider = (*Client)(nil)

// NewClient creates a Meteostat client. A missing API key yields
// core.ErrProviderNotConfigured.
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing Meteostat API key", core.ErrProviderNotConfigured)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	host := config.Host
	if host == "" {
		host = DefaultHost
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		host:    host,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Daily returns the station's daily observations for [start, end] with
// degree days filled in. Missing numeric fields read as 0.
func (c *Client) Daily(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, error) {
	params := url.Values{}
	params.Set("station", station)
	params.Set("start", start.Format(core.DateLayout))
	params.Set("end", end.Format(core.DateLayout))

	body, err := c.get(ctx, "/stations/daily", params)
	if err != nil {
		return nil, err
	}

	rows := gjson.GetBytes(body, "data").Array()
	days := make([]energy.WeatherDay, 0, len(rows))
	for _, row := range rows {
		date, err := parseDate(row.Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("meteostat: %w", err)
		}
		days = append(days, analytics.WithDegreeDays(energy.WeatherDay{
			Station:       station,
			Date:          date,
			AvgTemp:       row.Get("tavg").Float(),
			MinTemp:       row.Get("tmin").Float(),
			MaxTemp:       row.Get("tmax").Float(),
			Precipitation: row.Get("prcp").Float(),
			WindSpeed:     row.Get("wspd").Float(),
			Pressure:      row.Get("pres").Float(),
		}))
	}
	return days, nil
}

// NearbyStations lists up to limit stations around (lat, lon), nearest first.
func (c *Client) NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]energy.Station, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/stations/nearby", params)
	if err != nil {
		return nil, err
	}

	rows := gjson.GetBytes(body, "data").Array()
	stations := make([]energy.Station, 0, len(rows))
	for _, row := range rows {
		name := row.Get("name.en").String()
		if name == "" {
			name = row.Get("name").String()
		}
		stations = append(stations, energy.Station{
			ID:        row.Get("id").String(),
			Name:      name,
			Country:   row.Get("country").String(),
			Latitude:  row.Get("latitude").Float(),
			Longitude: row.Get("longitude").Float(),
			Distance:  row.Get("distance").Float(),
		})
	}
	return stations, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meteostat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("meteostat API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("meteostat returned invalid JSON")
	}
	return body, nil
}

func parseDate(s string) (time.Time, error) {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	return time.Parse(core.DateLayout, s)
}
