package persistence

import (
	"context"
	"fmt"

	"github.com/kingsrook/qqq-client/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	SessionId string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionId)
}

const SESSION_KEY string = "SESSION"

// SessionStore keeps process sessions between exchanges so a run can be resumed.
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.ProcessSession) error
	GetSession(ctx context.Context, sessionId string) (*model.ProcessSession, error)
	DeleteSession(ctx context.Context, sessionId string) error
}
