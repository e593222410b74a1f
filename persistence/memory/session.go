package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/persistence"
)

var _ persistence.SessionStore = new(inMemorySessionStore)

// inMemorySessionStore keeps sessions for the life of the process, or ttl when set.
type inMemorySessionStore struct {
	sessions *cache.Cache
	ttl      time.Duration
}

func NewInMemorySessionStore(ttl time.Duration) *inMemorySessionStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &inMemorySessionStore{
		sessions: cache.New(expiration, cleanup),
		ttl:      expiration,
	}
}

func (s *inMemorySessionStore) SaveSession(ctx context.Context, session *model.ProcessSession) error {
	s.sessions.Set(session.Id, session.Clone(), s.ttl)
	return nil
}

func (s *inMemorySessionStore) GetSession(ctx context.Context, sessionId string) (*model.ProcessSession, error) {
	v, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, persistence.NotFoundError{SessionId: sessionId}
	}
	return v.(*model.ProcessSession).Clone(), nil
}

func (s *inMemorySessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	s.sessions.Delete(sessionId)
	return nil
}
