package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Ensure implementation satisfies the interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository is the catalog collaborator boundary: fetch every event in the
// requested window, already normalized. A failure is reported inside the
// collection, never as a bare error, so the fan-out join can carry both
// outcomes.
type Repository interface {
	FetchEvents(ctx context.Context, request types.UserRequest) types.EventCollection
}

// RepositoryImpl talks to a Ticketmaster Discovery v2 compatible API.
type RepositoryImpl struct {
	logger  *slog.Logger
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*rawPage]
	baseURL string
	apiKey  string
	// pageSize is the per-page item count; maxItems caps total accumulation
	// so a huge window cannot make a search unbounded.
	pageSize int
	maxItems int
}

// NewRepository creates a catalog repository. The API key is injected here
// rather than read from ambient process state.
func NewRepository(cfg *config.Config, apiKey string, logger *slog.Logger) *RepositoryImpl {
	breaker := gobreaker.NewCircuitBreaker[*rawPage](gobreaker.Settings{
		Name:    "ticketmaster",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &RepositoryImpl{
		logger:   logger,
		client:   &http.Client{Timeout: cfg.Catalog.Timeout},
		breaker:  breaker,
		baseURL:  cfg.Catalog.BaseURL,
		apiKey:   apiKey,
		pageSize: cfg.Catalog.PageSize,
		maxItems: cfg.Catalog.MaxItems,
	}
}

// FetchEvents paginates the catalog until it reports no further pages or the
// item cap is reached, then normalizes everything it accumulated.
func (r *RepositoryImpl) FetchEvents(ctx context.Context, request types.UserRequest) types.EventCollection {
	ctx, span := otel.Tracer("EventsRepository").Start(ctx, "FetchEvents")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.city", request.City),
		attribute.String("request.start_date", request.StartDate),
		attribute.String("request.end_date", request.EndDate),
	)

	out := types.EventCollection{Request: request}

	var allRaw []rawEvent
	page := 0
	for {
		body, err := r.fetchPage(ctx, request, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog fetch failed")
			collErr := &types.CollectionError{Source: "catalog", Err: err}
			r.logger.ErrorContext(ctx, "Catalog fetch failed",
				slog.Int("page", page), slog.Any("error", err))
			out.Error = collErr.Error()
			return out
		}
		metrics.Get().CatalogPagesFetched.Add(ctx, 1)

		if body.Embedded == nil || len(body.Embedded.Events) == 0 {
			break
		}
		allRaw = append(allRaw, body.Embedded.Events...)

		page++
		if page >= body.Page.TotalPages || page*r.pageSize >= r.maxItems {
			break
		}
	}

	out.Events = make([]types.EventRecord, 0, len(allRaw))
	for _, raw := range allRaw {
		out.Events = append(out.Events, normalizeEvent(raw))
	}
	out.TotalFound = len(out.Events)

	r.logger.InfoContext(ctx, "Catalog fetch completed",
		slog.Int("pages", page+1),
		slog.Int("events", out.TotalFound))
	span.SetAttributes(attribute.Int("events.total", out.TotalFound))
	return out
}

func (r *RepositoryImpl) fetchPage(ctx context.Context, request types.UserRequest, page int) (*rawPage, error) {
	return r.breaker.Execute(func() (*rawPage, error) {
		params := url.Values{}
		params.Set("apikey", r.apiKey)
		params.Set("city", request.City)
		params.Set("countryCode", request.CountryCode)
		params.Set("startDateTime", request.StartDate+"T00:00:00Z")
		params.Set("endDateTime", request.EndDate+"T23:59:59Z")
		params.Set("size", strconv.Itoa(r.pageSize))
		params.Set("sort", "date,asc")
		params.Set("page", strconv.Itoa(page))
		if request.StateCode != "" {
			params.Set("stateCode", request.StateCode)
		}
		if request.BudgetMax != nil {
			params.Set("priceMax", strconv.FormatFloat(*request.BudgetMax, 'f', -1, 64))
		}

		reqURL := fmt.Sprintf("%s/events.json?%s", r.baseURL, params.Encode())
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog request: %w", err)
		}

		resp, err := r.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("catalog request failed: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
		}

		var body rawPage
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("failed to decode catalog response: %w", err)
		}
		if body.Fault != nil {
			return nil, fmt.Errorf("catalog fault: %s", body.Fault.FaultString)
		}
		return &body, nil
	})
}
