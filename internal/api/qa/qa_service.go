package qa

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/config"
	generativeAI "github.com/FACorreiaa/go-event-scout/internal/api/generative_ai"
	"github.com/FACorreiaa/go-event-scout/internal/api/websearch"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// sparseDescriptionLen marks an event description as too thin to answer
// questions about; such events are candidates for web enrichment.
const sparseDescriptionLen = 40

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service answers follow-up questions about a ranked set. The caller owns
// the conversation log between turns; every call returns the new log.
type Service interface {
	AnswerQuestion(ctx context.Context, recs *types.RecommendationSet, enrichment []websearch.Result,
		history types.ConversationLog, question string) (string, types.ConversationLog)
	CollectEnrichment(ctx context.Context, recs *types.RecommendationSet) []websearch.Result
}

type ServiceImpl struct {
	logger            *slog.Logger
	judge             generativeAI.Judge
	searchRepo        websearch.Repository
	answerTemperature float32
}

func NewService(judge generativeAI.Judge, searchRepo websearch.Repository,
	cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:            logger,
		judge:             judge,
		searchRepo:        searchRepo,
		answerTemperature: cfg.Judge.AnswerTemperature,
	}
}

// AnswerQuestion runs one QA turn: grounding block, prior history in
// original order, then the new question. A judge failure becomes a fixed
// apology embedding the failure detail, never a retry and never an error to
// the caller. Success or failure, exactly the (question, answer) pair is
// appended and the new log returned.
func (s *ServiceImpl) AnswerQuestion(ctx context.Context, recs *types.RecommendationSet,
	enrichment []websearch.Result, history types.ConversationLog, question string) (string, types.ConversationLog) {

	ctx, span := otel.Tracer("QAService").Start(ctx, "AnswerQuestion")
	defer span.End()
	span.SetAttributes(attribute.Int("history.length", len(history)))
	metrics.Get().QATurnsTotal.Add(ctx, 1)

	systemInstructions := qaSystemInstructions + "\n\n" + BuildGroundingBlock(recs, enrichment)
	messages := history.Append(types.ConversationMessage{Role: types.RoleUser, Content: question})

	answer, err := s.judge.Complete(ctx, systemInstructions, messages, s.answerTemperature)
	if err != nil {
		s.logger.WarnContext(ctx, "QA judge call failed", slog.Any("error", err))
		answer = fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err)
	}

	newLog := history.Append(
		types.ConversationMessage{Role: types.RoleUser, Content: question},
		types.ConversationMessage{Role: types.RoleAssistant, Content: answer},
	)
	return answer, newLog
}

// CollectEnrichment looks up web background for events whose catalog
// description is too sparse to answer questions about. It runs once per
// ranked set, caps concurrency, and degrades silently: every failure just
// means no enrichment for that event.
func (s *ServiceImpl) CollectEnrichment(ctx context.Context, recs *types.RecommendationSet) []websearch.Result {
	ctx, span := otel.Tracer("QAService").Start(ctx, "CollectEnrichment")
	defer span.End()

	if s.searchRepo == nil {
		return nil
	}

	var mu sync.Mutex
	var collected []websearch.Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, rec := range recs.Recommendations {
		if len(rec.Event.Description) >= sparseDescriptionLen {
			continue
		}
		event := rec.Event
		g.Go(func() error {
			query := fmt.Sprintf("%s %s event", event.Name, event.VenueCity)
			results, err := s.searchRepo.Search(gctx, query)
			if err != nil {
				s.logger.DebugContext(gctx, "Enrichment lookup failed",
					slog.String("event", event.Name), slog.Any("error", err))
				return nil // silent degradation
			}
			mu.Lock()
			collected = append(collected, results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	span.SetAttributes(attribute.Int("enrichment.results", len(collected)))
	return collected
}
