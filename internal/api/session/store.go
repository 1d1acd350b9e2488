package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-event-scout/internal/api/websearch"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Session is the presentation-layer state kept between a search and its
// follow-up questions. The core pipeline never sees it: the handler owns the
// session lifecycle and hands the core only the pieces it needs per call.
// The store returns the same pointer to every caller, so the embedded mutex
// must be held for the whole turn when reading or writing the mutable fields.
type Session struct {
	sync.Mutex

	ID              string
	Recommendations *types.RecommendationSet
	History         types.ConversationLog
	Enrichment      []websearch.Result
	Enriched        bool
}

// Store is an in-memory TTL session store.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{cache: cache.New(ttl, 10*time.Minute)}
}

// Create stores a fresh session for a ranked set and returns it.
func (s *Store) Create(recs *types.RecommendationSet) *Session {
	sess := &Session{
		ID:              uuid.NewString(),
		Recommendations: recs,
		History:         types.ConversationLog{},
	}
	s.cache.SetDefault(sess.ID, sess)
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Save writes the session back, refreshing its TTL.
func (s *Store) Save(sess *Session) {
	s.cache.SetDefault(sess.ID, sess)
}
