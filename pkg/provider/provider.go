package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Name identifies an external data provider
type Name string

// known providers, in the declared aggregation order
const (
	Analytics Name = "analytics"
	Github    Name = "github"
	Npm       Name = "npm"
	Lapras    Name = "lapras"
	Zenn      Name = "zenn"
	Qiita     Name = "qiita"
	Blog      Name = "blog"
)

// ConfigError indicates a required credential or setting is missing.
// Raised before any network call is made.
type ConfigError struct {
	Provider Name
	Setting  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: required setting %q is not set", e.Provider, e.Setting)
}

// HTTPError indicates a non-2xx response from a provider API
type HTTPError struct {
	Provider Name
	Status   int
	Body     string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status code %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.Provider, e.Status, e.Body)
}

// NewHTTPClient creates an http client with sane pooling defaults,
// shared by all adapters
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

const maxErrBody = 1024

// doJSON executes the request, verifies a 2xx status and decodes the
// JSON body into out. On non-2xx it returns an HTTPError carrying up to
// 1KB of the provider's error body.
func doJSON(client *http.Client, name Name, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &HTTPError{Provider: name, Status: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", name, err)
	}
	return nil
}

// getJSON is a doJSON shortcut for plain GET requests
func getJSON(ctx context.Context, client *http.Client, name Name, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", name, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(client, name, req, out)
}
