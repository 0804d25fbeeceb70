package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func TestPingWithRetry_ImmediateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := pingWithRetry(c); err != nil {
		t.Fatalf("pingWithRetry failed on immediate success: %v", err)
	}
}

func TestPingWithRetry_SucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := pingWithRetry(c); err != nil {
		t.Fatalf("pingWithRetry failed: %v (calls=%d)", err, calls.Load())
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 calls, got %d", calls.Load())
	}
}

func TestPingWithRetry_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := pingWithRetry(c)
	if err == nil {
		t.Fatal("expected error when all pings fail")
	}
}

func TestQueryCatalog_EncodesQuery(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"key":"slack","name":"Slack","total_stars":4,"favorited":false}],"facets":{"availableDomains":["slack.com"],"resultCount":1,"hasActiveFilters":true},"metadata":{"page":2,"pageSize":5,"totalPages":3,"totalItems":11,"minStars":3}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok")
	page, err := c.QueryCatalog(context.Background(), models.CatalogQuery{
		Search: "sl", Category: "skill", IncludeExternal: false, SortBy: "recent", Page: 2, PageSize: 5, Mode: "dev",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "sl", gotQuery.Get("search"))
	assert.Equal(t, "skill", gotQuery.Get("category"))
	assert.Equal(t, "false", gotQuery.Get("includeExternal"))
	assert.Equal(t, "recent", gotQuery.Get("sortBy"))
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "5", gotQuery.Get("pageSize"))
	assert.Equal(t, "dev", gotQuery.Get("mode"))
	assert.False(t, gotQuery.Has("domain"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, 4, page.Items[0].TotalStars)
	assert.Equal(t, 3, page.Metadata.MinStars)
}

func TestSetFlag_SendsBodyAndMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body models.SetFeatureFlagInput
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPut || body.Value == "-1" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"title":"Unprocessable Entity","status":422,"detail":"studioMinStars expects a non-negative integer"}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"studioMinStars","kind":"int","value":5,"default":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	flag, err := c.SetFlag(context.Background(), "studioMinStars", "5")
	require.NoError(t, err)
	assert.Equal(t, "studioMinStars", flag.Name)
	assert.EqualValues(t, 5, flag.Value)

	_, err = c.SetFlag(context.Background(), "studioMinStars", "-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, err.Error(), "non-negative integer")
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"Not Found","status":404,"detail":"Agent not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").ListVersions(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Agent not found")
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", "")
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CONSOLE_API_BASE_URL", "http://console.internal:9090/")
	t.Setenv("CONSOLE_API_TOKEN", "secret")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://console.internal:9090", c.BaseURL)
	assert.Equal(t, "secret", c.token)
}
