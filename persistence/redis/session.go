package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"

	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/persistence"
)

const SESSION_DATA_FIELD string = "data"
const SESSION_STATE_FIELD string = "state"

var _ persistence.SessionStore = new(redisSessionStore)

// redisSessionStore keeps each session in a hash under ns:SESSION:<id>.
type redisSessionStore struct {
	*baseDao
	ttl   time.Duration
	codec persistence.SessionCodec
}

func NewRedisSessionStore(conf Config) *redisSessionStore {
	return &redisSessionStore{
		baseDao: newBaseDao(conf),
		ttl:     conf.TTL,
		codec:   persistence.NewJsonSessionCodec(),
	}
}

func (r *redisSessionStore) SaveSession(ctx context.Context, session *model.ProcessSession) error {
	key := r.getNamespaceKey(persistence.SESSION_KEY, session.Id)
	data, err := r.codec.Encode(session)
	if err != nil {
		return err
	}
	_, err = r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HSet(ctx, key, SESSION_DATA_FIELD, string(data), SESSION_STATE_FIELD, string(session.State))
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisSessionStore) GetSession(ctx context.Context, sessionId string) (*model.ProcessSession, error) {
	key := r.getNamespaceKey(persistence.SESSION_KEY, sessionId)
	data, err := r.redisClient.HGet(ctx, key, SESSION_DATA_FIELD).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{SessionId: sessionId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return r.codec.Decode([]byte(data))
}

func (r *redisSessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	key := r.getNamespaceKey(persistence.SESSION_KEY, sessionId)
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
