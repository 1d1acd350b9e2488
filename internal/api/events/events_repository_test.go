package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

func testRepo(t *testing.T, serverURL string, pageSize, maxItems int) *RepositoryImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Catalog.BaseURL = serverURL
	cfg.Catalog.PageSize = pageSize
	cfg.Catalog.MaxItems = maxItems
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewRepository(cfg, "test-key", logger)
}

func testRequest() types.UserRequest {
	return types.UserRequest{
		City:             "New York",
		StateCode:        "NY",
		CountryCode:      "US",
		StartDate:        "2026-03-01",
		EndDate:          "2026-03-07",
		EventDescription: "jazz",
	}
}

func TestFetchEventsPaginatesUntilExhausted(t *testing.T) {
	var pagesServed []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		require.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprintf(w, `{
			"_embedded": {"events": [{"id": "ev-p%s", "name": "Event page %s"}]},
			"page": {"totalPages": 3}
		}`, page, page)
	}))
	defer server.Close()

	repo := testRepo(t, server.URL, 200, 1000)
	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Empty(t, out.Error)
	assert.Equal(t, []string{"0", "1", "2"}, pagesServed, "should walk every reported page exactly once")
	assert.Equal(t, 3, out.TotalFound)
	assert.Equal(t, "ev-p0", out.Events[0].ID)
}

func TestFetchEventsStopsAtItemCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"_embedded": {"events": [{"id": "ev"}, {"id": "ev2"}]},
			"page": {"totalPages": 100}
		}`)
	}))
	defer server.Close()

	// pageSize 2, cap 6: pages 0,1,2 then page*size reaches the cap.
	repo := testRepo(t, server.URL, 2, 6)
	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Empty(t, out.Error)
	assert.Equal(t, 6, out.TotalFound)
}

func TestFetchEventsReportsFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fault": {"faultstring": "Invalid ApiKey"}}`)
	}))
	defer server.Close()

	repo := testRepo(t, server.URL, 200, 1000)
	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Contains(t, out.Error, "Invalid ApiKey")
	assert.Empty(t, out.Events)
}

func TestFetchEventsReportsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	repo := testRepo(t, server.URL, 200, 1000)
	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Contains(t, out.Error, "status 429")
	assert.Zero(t, out.TotalFound)
}

func TestFetchEventsBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := testRepo(t, server.URL, 200, 1000)

	// Five consecutive failures trip the breaker.
	for i := 0; i < 5; i++ {
		out := repo.FetchEvents(context.Background(), testRequest())
		assert.Contains(t, out.Error, "status 500")
	}
	require.Equal(t, 5, hits)

	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Contains(t, out.Error, "catalog collection failed")
	assert.Contains(t, out.Error, "circuit breaker is open")
	assert.Equal(t, 5, hits, "an open breaker fails fast without calling the catalog")
	assert.Empty(t, out.Events)
}

func TestFetchEventsEmptyPageIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"page": {"totalPages": 0}}`)
	}))
	defer server.Close()

	repo := testRepo(t, server.URL, 200, 1000)
	out := repo.FetchEvents(context.Background(), testRequest())

	assert.Empty(t, out.Error)
	assert.Zero(t, out.TotalFound)
}
