package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Result is one supplementary lookup hit used to enrich sparse event
// descriptions before QA.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Ensure implementation satisfies the interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository is the optional supplementary search collaborator. Callers must
// treat an error as "no enrichment", never as a blocking failure.
type Repository interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// RepositoryImpl queries the DuckDuckGo instant-answer endpoint, which needs
// no API key.
type RepositoryImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewRepository(logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger:  logger,
		client:  &http.Client{Timeout: 8 * time.Second},
		baseURL: "https://api.duckduckgo.com/",
	}
}

func (r *RepositoryImpl) Search(ctx context.Context, query string) ([]Result, error) {
	ctx, span := otel.Tracer("WebSearchRepository").Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body struct {
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		Heading       string `json:"Heading"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var results []Result
	if body.AbstractText != "" {
		results = append(results, Result{Title: body.Heading, Snippet: body.AbstractText, URL: body.AbstractURL})
	}
	for _, topic := range body.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		title := topic.Text
		if idx := strings.Index(title, " - "); idx > 0 {
			title = title[:idx]
		}
		results = append(results, Result{Title: title, Snippet: topic.Text, URL: topic.FirstURL})
		if len(results) >= 3 {
			break
		}
	}
	return results, nil
}
