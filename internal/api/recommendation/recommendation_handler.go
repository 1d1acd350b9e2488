package recommendation

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/go-event-scout/internal/api"
	"github.com/FACorreiaa/go-event-scout/internal/api/session"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Ensure implementation satisfies the interface
var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ProduceRecommendations(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service  Service
	sessions *session.Store
	logger   *slog.Logger
}

func NewHandler(service Service, sessions *session.Store, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, sessions: sessions, logger: logger}
}

// recommendationsResponse wraps the ranked set with the session handle the
// QA endpoint needs.
type recommendationsResponse struct {
	SessionID string `json:"session_id"`
	*types.RecommendationSet
}

// ProduceRecommendations handles POST /recommendations?top_n=N.
func (h *HandlerImpl) ProduceRecommendations(w http.ResponseWriter, r *http.Request) {
	var request types.UserRequest
	if err := api.DecodeJSONBody(w, r, &request); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		topN = n
	}

	result, err := h.service.ProduceRecommendations(r.Context(), request, topN)
	if err != nil {
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Recommendation pipeline failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to produce recommendations")
		return
	}

	sess := h.sessions.Create(result)
	api.WriteJSONResponse(w, r, http.StatusOK, recommendationsResponse{
		SessionID:         sess.ID,
		RecommendationSet: result,
	})
}
