package metadata

import (
	"context"

	"github.com/kingsrook/qqq-client/model"
)

// MetadataLoader fetches metadata documents from the backend. transport.Client implements it.
type MetadataLoader interface {
	LoadInstance(ctx context.Context) (*model.Instance, error)
	LoadTable(ctx context.Context, tableName string) (*model.Table, error)
	LoadProcess(ctx context.Context, processName string) (*model.Process, error)
	LoadAuthentication(ctx context.Context) (*model.Authentication, error)
}
