package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/kingsrook/qqq-client/model"
)

// SessionCodec turns sessions into the bytes a store keeps and back. Every failure is a
// StorageLayerError.
type SessionCodec interface {
	Encode(session *model.ProcessSession) ([]byte, error)
	Decode(data []byte) (*model.ProcessSession, error)
}

type jsonSessionCodec struct{}

var _ SessionCodec = new(jsonSessionCodec)

func NewJsonSessionCodec() *jsonSessionCodec {
	return &jsonSessionCodec{}
}

func (c *jsonSessionCodec) Encode(session *model.ProcessSession) ([]byte, error) {
	if session == nil || session.Id == "" {
		return nil, StorageLayerError{Message: "session without id"}
	}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, StorageLayerError{Message: fmt.Sprintf("encode session %s: %s", session.Id, err)}
	}
	return data, nil
}

func (c *jsonSessionCodec) Decode(data []byte) (*model.ProcessSession, error) {
	var session model.ProcessSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, StorageLayerError{Message: fmt.Sprintf("decode session: %s", err)}
	}
	if session.Id == "" || session.ProcessName == "" {
		return nil, StorageLayerError{Message: "decoded session has no id or process name"}
	}
	if session.Values == nil {
		session.Values = make(map[string]any)
	}
	return &session, nil
}
