package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaprasClient_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public/testuser.json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"name": "Test User",
			"description": "backend developer",
			"iconimage_url": "https://example.com/icon.png",
			"e_score": 3.85,
			"b_score": 3.21,
			"i_score": 2.95,
			"activities": [
				{"title": "released v2", "url": "https://example.com/a1", "date": "2026-02-10T09:00:00Z", "type": "github"},
				{"title": "bad date entry", "url": "https://example.com/a2", "date": "yesterday", "type": "blog"},
				{"title": "wrote an article", "url": "https://example.com/a3", "date": "2026-02-08T12:30:00+09:00", "type": "zenn"}
			]
		}`))
	}))
	defer ts.Close()

	client := NewLaprasClient(LaprasConfig{User: "testuser", BaseURL: ts.URL}, ts.Client())

	res, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Test User", res.Name)
	assert.InDelta(t, 3.85, res.TechScore, 0.001)
	assert.InDelta(t, 3.21, res.BizScore, 0.001)
	assert.InDelta(t, 2.95, res.InfluenceScore, 0.001)

	// unparseable dates are skipped, not fatal
	require.Len(t, res.Activities, 2)
	assert.Equal(t, "released v2", res.Activities[0].Title)
	assert.Equal(t, "github", res.Activities[0].Type)
	assert.Equal(t, time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), res.Activities[0].Date)
	assert.Equal(t, "wrote an article", res.Activities[1].Title)
}

func TestLaprasClient_FetchNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewLaprasClient(LaprasConfig{User: "nobody", BaseURL: ts.URL}, ts.Client())

	_, err := client.Fetch(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, Lapras, httpErr.Provider)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestLaprasClient_FetchMissingUser(t *testing.T) {
	client := NewLaprasClient(LaprasConfig{}, http.DefaultClient)
	_, err := client.Fetch(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "user", cfgErr.Setting)
}
