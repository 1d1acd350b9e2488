package qa

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-event-scout/internal/api"
	"github.com/FACorreiaa/go-event-scout/internal/api/session"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Ensure implementation satisfies the interface
var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	AnswerSessionQuestion(w http.ResponseWriter, r *http.Request)
	AnswerQuestion(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service  Service
	sessions *session.Store
	logger   *slog.Logger
}

func NewHandler(service Service, sessions *session.Store, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, sessions: sessions, logger: logger}
}

type sessionQuestionRequest struct {
	Question string `json:"question"`
}

type statelessQARequest struct {
	Recommendations *types.RecommendationSet `json:"recommendations"`
	History         types.ConversationLog    `json:"conversation_history"`
	Question        string                   `json:"user_question"`
}

type qaResponse struct {
	Answer  string                `json:"answer"`
	History types.ConversationLog `json:"updated_history"`
}

// AnswerSessionQuestion handles POST /recommendations/{sessionID}/qa. The
// session keeps the ranked set and the log server-side; enrichment is
// collected on the first turn and reused for the rest of the session.
func (h *HandlerImpl) AnswerSessionQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		api.ErrorResponse(w, r, http.StatusNotFound, "session not found or expired")
		return
	}

	var body sessionQuestionRequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.Question == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "question must not be empty")
		return
	}

	// Concurrent turns on the same session share the pointer; the whole
	// turn runs under the session lock.
	sess.Lock()
	defer sess.Unlock()

	if !sess.Enriched {
		sess.Enrichment = h.service.CollectEnrichment(r.Context(), sess.Recommendations)
		sess.Enriched = true
	}

	answer, newLog := h.service.AnswerQuestion(r.Context(), sess.Recommendations, sess.Enrichment, sess.History, body.Question)
	sess.History = newLog
	h.sessions.Save(sess)

	api.WriteJSONResponse(w, r, http.StatusOK, qaResponse{Answer: answer, History: newLog})
}

// AnswerQuestion handles the stateless POST /qa: the client carries the
// ranked set and the log itself. Enrichment is collected per call since no
// session exists to reuse it.
func (h *HandlerImpl) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var body statelessQARequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.Recommendations == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "recommendations must be provided")
		return
	}
	if body.Question == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "user_question must not be empty")
		return
	}

	enrichment := h.service.CollectEnrichment(r.Context(), body.Recommendations)
	answer, newLog := h.service.AnswerQuestion(r.Context(), body.Recommendations, enrichment, body.History, body.Question)

	api.WriteJSONResponse(w, r, http.StatusOK, qaResponse{Answer: answer, History: newLog})
}
