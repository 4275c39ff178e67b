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

func TestBlogClient_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <link>https://blog.example.com</link>
    <item>
      <title>Post One</title>
      <link>https://blog.example.com/post-one</link>
      <pubDate>Mon, 09 Feb 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Post Two</title>
      <link>https://blog.example.com/post-two</link>
      <pubDate>Sun, 01 Feb 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`))
	}))
	defer ts.Close()

	client := NewBlogClient(BlogConfig{FeedURL: ts.URL}, ts.Client())

	posts, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "Post One", posts[0].Title)
	assert.Equal(t, "https://blog.example.com/post-one", posts[0].URL)
	assert.Equal(t, time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), posts[0].Published.UTC())
	assert.Equal(t, "Post Two", posts[1].Title)
}

func TestBlogClient_FetchBadFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed at all"))
	}))
	defer ts.Close()

	client := NewBlogClient(BlogConfig{FeedURL: ts.URL}, ts.Client())

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}

func TestBlogClient_FetchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewBlogClient(BlogConfig{FeedURL: ts.URL}, ts.Client())

	_, err := client.Fetch(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, Blog, httpErr.Provider)
}

func TestBlogClient_FetchMissingURL(t *testing.T) {
	client := NewBlogClient(BlogConfig{}, http.DefaultClient)
	_, err := client.Fetch(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "feed_url", cfgErr.Setting)
}
