package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/api/events"
	generativeAI "github.com/FACorreiaa/go-event-scout/internal/api/generative_ai"
	"github.com/FACorreiaa/go-event-scout/internal/api/weather"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

const (
	// fallbackScore is assigned uniformly when the judge is unreachable or
	// its reply is unrecoverable. Candidates the judge simply skipped get
	// notScoredScore instead, so judge silence ranks below judge failure.
	fallbackScore  = 50.0
	notScoredScore = 0.0

	notScoredReason = "Not scored by the judge"
	noRationale     = "No rationale provided"
)

var validate = validator.New()

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the consumer-facing recommendation surface.
type Service interface {
	ProduceRecommendations(ctx context.Context, request types.UserRequest, topN int) (*types.RecommendationSet, error)
}

// ServiceImpl orchestrates the pipeline: concurrent catalog+forecast
// collection, judge scoring, sanitization and ranking.
type ServiceImpl struct {
	logger             *slog.Logger
	eventsRepo         events.Repository
	weatherRepo        weather.Repository
	judge              generativeAI.Judge
	scoringTemperature float32
	maxCandidates      int
	defaultTopN        int
}

func NewService(eventsRepo events.Repository, weatherRepo weather.Repository,
	judge generativeAI.Judge, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:             logger,
		eventsRepo:         eventsRepo,
		weatherRepo:        weatherRepo,
		judge:              judge,
		scoringTemperature: cfg.Judge.ScoringTemperature,
		maxCandidates:      cfg.Pipeline.MaxScoreCandidates,
		defaultTopN:        cfg.Pipeline.DefaultTopN,
	}
}

// ProduceRecommendations runs the full pipeline for one search. The only
// error it returns is a ValidationError on the request itself; collaborator
// and judge failures are absorbed into the result per the fallback policy
// and always left visible in its fields.
func (s *ServiceImpl) ProduceRecommendations(ctx context.Context, request types.UserRequest, topN int) (*types.RecommendationSet, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "ProduceRecommendations")
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.Get().PipelineDurationSeconds.Record(ctx, time.Since(start).Seconds())
		metrics.Get().SearchRequestsTotal.Add(ctx, 1)
	}()

	// Reject malformed requests before any collaborator is called.
	if err := validateRequest(request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	if request.CountryCode == "" {
		request.CountryCode = "US"
	}
	if topN <= 0 {
		topN = s.defaultTopN
	}

	eventsOut, forecastOut := s.collect(ctx, request)

	result := &types.RecommendationSet{Request: request, TotalFound: eventsOut.TotalFound}

	// Catalog failure is fatal to the pipeline: empty set, no judge call.
	if eventsOut.Error != "" {
		s.logger.ErrorContext(ctx, "Catalog collection failed, returning empty set",
			slog.String("error", eventsOut.Error))
		span.SetStatus(codes.Error, "catalog collection failed")
		result.Error = eventsOut.Error
		result.Recommendations = []types.ScoredEvent{}
		return result, nil
	}
	// Forecast failure is absorbed: weather stays absent, but the failure
	// must remain visible in the output.
	if forecastOut.Error != "" {
		s.logger.WarnContext(ctx, "Forecast collection failed, continuing without weather",
			slog.String("error", forecastOut.Error))
		result.ForecastError = forecastOut.Error
	}

	// Never spend a judge call on an empty candidate set.
	if len(eventsOut.Events) == 0 {
		result.Recommendations = []types.ScoredEvent{}
		return result, nil
	}

	candidates := eventsOut.Events
	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	entries, judgeErr := s.scoreCandidates(ctx, request, candidates, forecastOut.Forecasts)
	if judgeErr != nil {
		s.logger.WarnContext(ctx, "Judge scoring failed, assigning fallback scores",
			slog.Any("error", judgeErr))
		result.Recommendations = fallbackRecommendations(candidates, forecastOut.Forecasts, judgeErr)
	} else {
		result.Recommendations = rank(candidates, forecastOut.Forecasts, entries)
	}

	if len(result.Recommendations) > topN {
		result.Recommendations = result.Recommendations[:topN]
	}
	return result, nil
}

// collect runs the catalog and forecast fetches as two independent tasks and
// joins both before returning. Neither result is discarded even when one
// side fails; each task only reads the request and writes its own channel.
func (s *ServiceImpl) collect(ctx context.Context, request types.UserRequest) (types.EventCollection, types.ForecastCollection) {
	var wg sync.WaitGroup
	eventsCh := make(chan types.EventCollection, 1)
	forecastCh := make(chan types.ForecastCollection, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		eventsCh <- s.eventsRepo.FetchEvents(ctx, request)
	}()
	go func() {
		defer wg.Done()
		forecastCh <- s.weatherRepo.FetchForecast(ctx, request)
	}()
	wg.Wait()

	return <-eventsCh, <-forecastCh
}

// scoreCandidates runs the single scoring round-trip and sanitizes the reply.
func (s *ServiceImpl) scoreCandidates(ctx context.Context, request types.UserRequest,
	candidates []types.EventRecord, forecasts map[string]types.ForecastRecord) ([]types.ScoreEntry, error) {

	prompt := buildScoringPrompt(request, candidates, forecasts)
	history := types.ConversationLog{{Role: types.RoleUser, Content: prompt}}

	reply, err := s.judge.Complete(ctx, scoringSystemInstructions, history, s.scoringTemperature)
	if err != nil {
		return nil, &types.ScoringError{Err: err}
	}

	entries, repaired, err := SanitizeScoreReply(reply)
	if err != nil {
		return nil, err
	}
	if repaired {
		metrics.Get().SanitizerRepairsTotal.Add(ctx, 1)
		s.logger.InfoContext(ctx, "Judge reply needed structural repair")
	}
	return entries, nil
}

// rank merges the sanitized scores onto every candidate (not only the ones
// the judge mentioned), clamps scores into [0,100], sorts descending with a
// stable sort so ties keep collection order, and leaves truncation to the
// caller.
func rank(candidates []types.EventRecord, forecasts map[string]types.ForecastRecord, entries []types.ScoreEntry) []types.ScoredEvent {
	byID := make(map[string]types.ScoreEntry, len(entries))
	for _, entry := range entries {
		byID[entry.EventID] = entry
	}

	scored := make([]types.ScoredEvent, 0, len(candidates))
	for _, event := range candidates {
		se := types.ScoredEvent{
			Event:          event,
			Weather:        forecastFor(event, forecasts),
			RelevanceScore: notScoredScore,
			ScoreReason:    notScoredReason,
		}
		if entry, ok := byID[event.ID]; ok {
			se.RelevanceScore = clampScore(entry.Score)
			se.ScoreReason = entry.Reason
			if se.ScoreReason == "" {
				se.ScoreReason = noRationale
			}
		}
		scored = append(scored, se)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	return scored
}

// fallbackRecommendations assigns the neutral score to every candidate when
// the judge was unavailable or unrecoverable. The failure is spelled out in
// each rationale so the output never looks successful while having failed.
func fallbackRecommendations(candidates []types.EventRecord, forecasts map[string]types.ForecastRecord, judgeErr error) []types.ScoredEvent {
	scored := make([]types.ScoredEvent, 0, len(candidates))
	for _, event := range candidates {
		scored = append(scored, types.ScoredEvent{
			Event:          event,
			Weather:        forecastFor(event, forecasts),
			RelevanceScore: fallbackScore,
			ScoreReason:    fmt.Sprintf("Scoring judge unavailable (%v); default score assigned", judgeErr),
		})
	}
	return scored
}

func forecastFor(event types.EventRecord, forecasts map[string]types.ForecastRecord) *types.ForecastRecord {
	if w, ok := forecasts[event.Date]; ok {
		return &w
	}
	return nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func validateRequest(request types.UserRequest) error {
	if err := validate.Struct(request); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &types.ValidationError{
				Field:  errs[0].Field(),
				Reason: fmt.Sprintf("failed %q validation", errs[0].Tag()),
			}
		}
		return &types.ValidationError{Field: "request", Reason: err.Error()}
	}
	return request.CheckDates()
}
