package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/api/qa"
	"github.com/FACorreiaa/go-event-scout/internal/api/recommendation"
	"github.com/FACorreiaa/go-event-scout/internal/api/session"
	"github.com/FACorreiaa/go-event-scout/internal/api/websearch"
	api "github.com/FACorreiaa/go-event-scout/internal/router"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// setupBenchmarkRouter wires the real router with the canned collaborators
// from the e2e suite so benchmarks cover the full request path without
// network edges.
func setupBenchmarkRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := &config.Config{}
	cfg.Judge.ScoringTemperature = 0.2
	cfg.Judge.AnswerTemperature = 0.7
	cfg.Pipeline.DefaultTopN = 6
	cfg.Pipeline.MaxScoreCandidates = 40
	cfg.Sessions.TTL = time.Hour

	eventsRepo := &stubEventsRepo{events: benchmarkEvents(30)}
	weatherRepo := &stubWeatherRepo{forecasts: map[string]types.ForecastRecord{
		"2026-03-07": {Date: "2026-03-07", Description: "Clear sky", TempMinF: 40, TempMaxF: 55},
	}}
	judge := &stubJudge{
		scoringReply: benchmarkScoreReply(30),
		answerReply:  "Benchmark answer.",
	}

	sessions := session.NewStore(cfg.Sessions.TTL)
	recommendationService := recommendation.NewService(eventsRepo, weatherRepo, judge, cfg, logger)
	qaService := qa.NewService(judge, &stubSearchRepo{}, cfg, logger)

	return api.SetupRouter(&api.Config{
		RecommendationHandler: recommendation.NewHandler(recommendationService, sessions, logger),
		QAHandler:             qa.NewHandler(qaService, sessions, logger),
	})
}

func benchmarkEvents(n int) []types.EventRecord {
	events := make([]types.EventRecord, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, types.EventRecord{
			ID: fmt.Sprintf("evt-%d", i), Name: fmt.Sprintf("Event %d", i),
			Date: "2026-03-07", Time: "20:00", VenueName: "Venue", VenueCity: "New York",
			Category: "Music", Genre: "Jazz", PriceMin: 20, PriceMax: 60,
		})
	}
	return events
}

func benchmarkScoreReply(n int) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"event_id":"evt-%d","score":%d,"reason":"canned"}`, i, (i*7)%101)
	}
	buf.WriteByte(']')
	return buf.String()
}

func BenchmarkRecommendationsEndpoint(b *testing.B) {
	router := setupBenchmarkRouter()
	body, _ := json.Marshal(validSearch())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		// Spread client IPs so the per-IP rate limit does not cap b.N.
		req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:1234", (i/250)%250, i%250)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkScoreReplySanitizer(b *testing.B) {
	clean := benchmarkScoreReply(30)
	fenced := "```json\n" + benchmarkScoreReply(30) + "\n```"
	truncated := benchmarkScoreReply(30)
	truncated = truncated[:len(truncated)-40]

	cases := []struct {
		name string
		raw  string
	}{
		{"clean", clean},
		{"fenced", fenced},
		{"truncated", truncated},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, _, err := recommendation.SanitizeScoreReply(tc.raw); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGroundingBlock(b *testing.B) {
	events := benchmarkEvents(6)
	recs := &types.RecommendationSet{Request: types.UserRequest{City: "New York"}}
	for i, evt := range events {
		recs.Recommendations = append(recs.Recommendations, types.ScoredEvent{
			Event: evt, RelevanceScore: float64(90 - i*5), ScoreReason: "canned",
		})
	}
	enrichment := []websearch.Result{{Title: "Background", Snippet: "context", URL: "https://example.com"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = qa.BuildGroundingBlock(recs, enrichment)
	}
}
