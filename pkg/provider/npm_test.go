package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// npmTestServer serves registry, downloads and size endpoints from one
// mux, the client config points all three base URLs at it
func npmTestServer(t *testing.T, sizeStatus int) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{pkg}/latest", func(w http.ResponseWriter, r *http.Request) {
		pkg := r.PathValue("pkg")
		_, _ = fmt.Fprintf(w, `{"name":%q,"version":"2.1.0","description":"test package","time":"2026-02-01T12:00:00Z"}`, pkg)
	})

	mux.HandleFunc("GET /downloads/range/last-month/{pkg}", func(w http.ResponseWriter, r *http.Request) {
		// 10 days, 100 downloads each: monthly=1000, weekly=700
		var days []string
		for i := 1; i <= 10; i++ {
			days = append(days, fmt.Sprintf(`{"day":"2026-02-%02d","downloads":100}`, i))
		}
		_, _ = fmt.Fprintf(w, `{"downloads":[%s]}`, strings.Join(days, ","))
	})

	mux.HandleFunc("GET /api.json", func(w http.ResponseWriter, r *http.Request) {
		if sizeStatus != http.StatusOK {
			w.WriteHeader(sizeStatus)
			return
		}
		assert.NotEmpty(t, r.URL.Query().Get("p"))
		_, _ = w.Write([]byte(`{"publishSize":12345,"installSize":67890}`))
	})

	return httptest.NewServer(mux)
}

func TestNpmClient_Fetch(t *testing.T) {
	ts := npmTestServer(t, http.StatusOK)
	defer ts.Close()

	client := NewNpmClient(NpmConfig{
		Packages:     []string{"pkg-one", "pkg-two"},
		RegistryURL:  ts.URL,
		DownloadsURL: ts.URL,
		SizeURL:      ts.URL,
	}, ts.Client())

	res, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Packages, 2)

	// order follows the configured package order
	assert.Equal(t, "pkg-one", res.Packages[0].Info.Name)
	assert.Equal(t, "pkg-two", res.Packages[1].Info.Name)

	first := res.Packages[0]
	assert.Equal(t, "2.1.0", first.Info.Version)
	assert.Equal(t, "2026-02-01T12:00:00Z", first.Info.LastPublished)
	assert.Equal(t, "https://www.npmjs.com/package/pkg-one", first.Info.URL)

	assert.Equal(t, 1000, first.Downloads.Monthly)
	assert.Equal(t, 700, first.Downloads.Weekly)
	assert.Len(t, first.Downloads.Daily, 10)

	require.NotNil(t, first.Size)
	assert.Equal(t, int64(12345), first.Size.PublishSize)
	assert.Equal(t, int64(67890), first.Size.InstallSize)
}

func TestNpmClient_FetchSizeUnavailable(t *testing.T) {
	ts := npmTestServer(t, http.StatusServiceUnavailable)
	defer ts.Close()

	client := NewNpmClient(NpmConfig{
		Packages:     []string{"pkg-one"},
		RegistryURL:  ts.URL,
		DownloadsURL: ts.URL,
		SizeURL:      ts.URL,
	}, ts.Client())

	res, err := client.Fetch(context.Background())
	require.NoError(t, err, "size lookup failure must not fail the package")
	require.Len(t, res.Packages, 1)
	assert.Nil(t, res.Packages[0].Size, "size stays unknown")
	assert.Equal(t, 1000, res.Packages[0].Downloads.Monthly)
}

func TestNpmClient_FetchRegistryFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{pkg}/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":[]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewNpmClient(NpmConfig{
		Packages:     []string{"missing-pkg"},
		RegistryURL:  ts.URL,
		DownloadsURL: ts.URL,
		SizeURL:      ts.URL,
	}, ts.Client())

	_, err := client.Fetch(context.Background())
	require.Error(t, err, "metadata lookup is mandatory")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestNpmClient_FetchSizeSettlesOnMandatoryFailure(t *testing.T) {
	var sizeDone atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{pkg}/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /downloads/range/last-month/{pkg}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":[]}`))
	})
	mux.HandleFunc("GET /api.json", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond) // outlive the metadata failure
		sizeDone.Store(true)
		_, _ = w.Write([]byte(`{"publishSize":1,"installSize":2}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewNpmClient(NpmConfig{
		Packages:     []string{"pkg-one"},
		RegistryURL:  ts.URL,
		DownloadsURL: ts.URL,
		SizeURL:      ts.URL,
	}, ts.Client())

	_, err := client.Fetch(context.Background())
	require.Error(t, err, "metadata failure fails the package")
	assert.True(t, sizeDone.Load(), "size lookup ran to completion, not canceled by the sibling failure")
}

func TestNpmClient_FetchNoPackages(t *testing.T) {
	client := NewNpmClient(NpmConfig{}, http.DefaultClient)
	_, err := client.Fetch(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, Npm, cfgErr.Provider)
	assert.Equal(t, "packages", cfgErr.Setting)
}

func TestNpmClient_FetchShortDownloadWindow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{pkg}/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"tiny","version":"0.1.0"}`))
	})
	mux.HandleFunc("GET /downloads/range/last-month/{pkg}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":[{"day":"2026-02-01","downloads":5},{"day":"2026-02-02","downloads":7}]}`))
	})
	mux.HandleFunc("GET /api.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"publishSize":1,"installSize":2}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewNpmClient(NpmConfig{
		Packages:     []string{"tiny"},
		RegistryURL:  ts.URL,
		DownloadsURL: ts.URL,
		SizeURL:      ts.URL,
	}, ts.Client())

	res, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Packages, 1)

	// fewer than 7 days: weekly equals the whole window
	assert.Equal(t, 12, res.Packages[0].Downloads.Weekly)
	assert.Equal(t, 12, res.Packages[0].Downloads.Monthly)
	assert.NotEmpty(t, res.Packages[0].Info.LastPublished, "missing publish time falls back to now")
}
