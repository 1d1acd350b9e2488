package qa

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/internal/api/session"
	"github.com/FACorreiaa/go-event-scout/internal/api/websearch"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// slowQAService answers after a short pause so overlapping turns would
// interleave if the handler did not serialize them.
type slowQAService struct {
	enrichmentCalls atomic.Int32
}

func (s *slowQAService) AnswerQuestion(_ context.Context, _ *types.RecommendationSet,
	_ []websearch.Result, history types.ConversationLog, question string) (string, types.ConversationLog) {
	time.Sleep(5 * time.Millisecond)
	answer := "answer to " + question
	return answer, history.Append(
		types.ConversationMessage{Role: types.RoleUser, Content: question},
		types.ConversationMessage{Role: types.RoleAssistant, Content: answer},
	)
}

func (s *slowQAService) CollectEnrichment(_ context.Context, _ *types.RecommendationSet) []websearch.Result {
	s.enrichmentCalls.Add(1)
	time.Sleep(5 * time.Millisecond)
	return []websearch.Result{{Title: "Background"}}
}

func TestAnswerSessionQuestionSerializesConcurrentTurns(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := &slowQAService{}
	sessions := session.NewStore(time.Hour)
	sess := sessions.Create(rankedSet())

	handler := NewHandler(svc, sessions, logger)
	router := chi.NewRouter()
	router.Post("/recommendations/{sessionID}/qa", handler.AnswerSessionQuestion)

	const turns = 4
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := bytes.NewBufferString(fmt.Sprintf(`{"question": "question %d"}`, n))
			req := httptest.NewRequest(http.MethodPost, "/recommendations/"+sess.ID+"/qa", body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(i)
	}
	wg.Wait()

	stored, ok := sessions.Get(sess.ID)
	require.True(t, ok)
	require.Len(t, stored.History, 2*turns, "no turn may be lost to an overlapping one")
	for i, msg := range stored.History {
		if i%2 == 0 {
			assert.Equal(t, types.RoleUser, msg.Role, "message %d", i)
		} else {
			assert.Equal(t, types.RoleAssistant, msg.Role, "message %d", i)
		}
	}
	assert.Equal(t, int32(1), svc.enrichmentCalls.Load(), "enrichment runs once per ranked set")
	assert.True(t, stored.Enriched)
}
