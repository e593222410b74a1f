package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/model"
)

const INSTANCE_KEY string = "INSTANCE"
const AUTHENTICATION_KEY string = "AUTHENTICATION"
const TABLE_PREFIX string = "TABLE_"
const PROCESS_PREFIX string = "PROCESS_"

// maxParallelLoads bounds concurrent table loads in LoadTables.
const maxParallelLoads = 8

type MetadataService interface {
	GetInstance(ctx context.Context) (*model.Instance, error)
	GetTable(ctx context.Context, tableName string) (*model.Table, error)
	GetProcess(ctx context.Context, processName string) (*model.Process, error)
	GetAuthentication(ctx context.Context) (*model.Authentication, error)
	LoadTables(ctx context.Context, tableNames []string) (map[string]*model.Table, error)
	ValidateStep(ctx context.Context, processName string, step string) error
	Invalidate()
}

type UnknownStepError struct {
	ProcessName string
	Step        string
}

func (e UnknownStepError) Error() string {
	return fmt.Sprintf("process %s has no step %s", e.ProcessName, e.Step)
}

// MetadataServiceImpl caches every loaded document for ttl.
type MetadataServiceImpl struct {
	loader MetadataLoader
	cache  *cache.Cache
}

var _ MetadataService = new(MetadataServiceImpl)

// NewMetadataService caches for ttl; zero disables expiry.
func NewMetadataService(loader MetadataLoader, ttl time.Duration) *MetadataServiceImpl {
	expiration := cache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	return &MetadataServiceImpl{
		loader: loader,
		cache:  cache.New(expiration, 0),
	}
}

func (s *MetadataServiceImpl) GetInstance(ctx context.Context) (*model.Instance, error) {
	if v, ok := s.cache.Get(INSTANCE_KEY); ok {
		return v.(*model.Instance), nil
	}
	instance, err := s.loader.LoadInstance(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(INSTANCE_KEY, instance)
	logger.Debug("loaded instance metadata", zap.Int("tables", len(instance.Tables)), zap.Int("processes", len(instance.Processes)))
	return instance, nil
}

func (s *MetadataServiceImpl) GetTable(ctx context.Context, tableName string) (*model.Table, error) {
	key := TABLE_PREFIX + tableName
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Table), nil
	}
	table, err := s.loader.LoadTable(ctx, tableName)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, table)
	logger.Debug("loaded table metadata", zap.String("table", tableName))
	return table, nil
}

func (s *MetadataServiceImpl) GetProcess(ctx context.Context, processName string) (*model.Process, error) {
	key := PROCESS_PREFIX + processName
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Process), nil
	}
	process, err := s.loader.LoadProcess(ctx, processName)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, process)
	logger.Debug("loaded process metadata", zap.String("process", processName))
	return process, nil
}

func (s *MetadataServiceImpl) GetAuthentication(ctx context.Context) (*model.Authentication, error) {
	if v, ok := s.cache.Get(AUTHENTICATION_KEY); ok {
		return v.(*model.Authentication), nil
	}
	auth, err := s.loader.LoadAuthentication(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(AUTHENTICATION_KEY, auth)
	return auth, nil
}

// LoadTables fetches tableNames concurrently. The first failure cancels the rest.
func (s *MetadataServiceImpl) LoadTables(ctx context.Context, tableNames []string) (map[string]*model.Table, error) {
	var mu sync.Mutex
	tables := make(map[string]*model.Table, len(tableNames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for _, name := range tableNames {
		name := name
		g.Go(func() error {
			table, err := s.GetTable(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			tables[name] = table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ValidateStep checks that step is one of the frontend steps of processName.
func (s *MetadataServiceImpl) ValidateStep(ctx context.Context, processName string, step string) error {
	process, err := s.GetProcess(ctx, processName)
	if err != nil {
		return err
	}
	if !process.HasStep(step) {
		return UnknownStepError{ProcessName: processName, Step: step}
	}
	return nil
}

func (s *MetadataServiceImpl) Invalidate() {
	s.cache.Flush()
}
