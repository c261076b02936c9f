package meteostat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, core.ErrProviderNotConfigured)
}

func TestDaily(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/daily", r.URL.Path)
		assert.Equal(t, "10637", r.URL.Query().Get("station"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2024-01-02", r.URL.Query().Get("end"))
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, DefaultHost, r.Header.Get("X-RapidAPI-Host"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{},"data":[
			{"date":"2024-01-01","tavg":3.5,"tmin":1.0,"tmax":6.2,"prcp":0.4,"wspd":12.1,"pres":1015.3},
			{"date":"2024-01-02","tavg":null,"tmin":null,"tmax":20.5,"prcp":null,"wspd":null,"pres":null}
		]}`))
	})

	days, err := client.Daily(context.Background(), "10637",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, 3.5, days[0].AvgTemp)
	assert.Equal(t, 1015.3, days[0].Pressure)
	assert.InDelta(t, 14.5, days[0].HeatingDegreeDays, 1e-9)
	assert.Zero(t, days[0].CoolingDegreeDays)

	assert.Zero(t, days[1].AvgTemp, "null reads as zero")
	assert.Equal(t, 20.5, days[1].MaxTemp)
	assert.InDelta(t, 18, days[1].HeatingDegreeDays, 1e-9)
}

func TestNearbyStations(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/nearby", r.URL.Path)
		assert.Equal(t, "52.52", r.URL.Query().Get("lat"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[
			{"id":"10384","name":{"en":"Berlin / Tempelhof"},"distance":4021.5},
			{"id":"10382","name":"Berlin-Tegel","country":"DE","distance":8000}
		]}`))
	})

	stations, err := client.NearbyStations(context.Background(), 52.52, 13.405, 0)
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "10384", stations[0].ID)
	assert.Equal(t, "Berlin / Tempelhof", stations[0].Name)
	assert.Equal(t, 4021.5, stations[0].Distance)
	assert.Equal(t, "Berlin-Tegel", stations[1].Name)
	assert.Equal(t, "DE", stations[1].Country)
}

func TestUpstreamError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	_, err := client.Daily(context.Background(), "10637", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
