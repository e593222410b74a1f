package agent

import (
	"context"
	"sync"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/analytics"
	"github.com/kingsrook/qqq-client/config"
	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/metadata"
	"github.com/kingsrook/qqq-client/persistence"
	"github.com/kingsrook/qqq-client/persistence/memory"
	"github.com/kingsrook/qqq-client/persistence/redis"
	"github.com/kingsrook/qqq-client/process"
	"github.com/kingsrook/qqq-client/transport"
)

// Agent holds everything needed to talk to one backend.
type Agent struct {
	Config          config.Config
	client          *transport.Client
	metadataService metadata.MetadataService
	sessionStore    persistence.SessionStore
	closers         []func() error
	shutdown        bool
	shutdownLock    sync.Mutex
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config: config,
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupTransport,
		a.setupMetadataService,
		a.setupSessionStore,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			_ = a.Shutdown()
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupAnalytics() error {
	if a.Config.AnalyticsConfig.CollectorType == "" {
		return nil
	}
	if err := analytics.InitDataCollector(a.Config.AnalyticsConfig); err != nil {
		return err
	}
	a.closers = append(a.closers, analytics.Close)
	return nil
}

func (a *Agent) setupTransport() error {
	var err error
	a.client, err = transport.NewClient(a.Config.BaseUrl, a.Config.Timeout)
	return err
}

func (a *Agent) setupMetadataService() error {
	a.metadataService = metadata.NewMetadataService(a.client, a.Config.MetadataCacheTTL)
	return nil
}

func (a *Agent) setupSessionStore() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		store := redis.NewRedisSessionStore(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
			Password:  a.Config.RedisConfig.Password,
			TTL:       a.Config.RedisConfig.TTL,
		})
		a.closers = append(a.closers, store.Close)
		a.sessionStore = store
	default:
		a.sessionStore = memory.NewInMemorySessionStore(a.Config.RedisConfig.TTL)
	}
	logger.Debug("session store ready", zap.String("storage", string(a.Config.StorageType)))
	return nil
}

func (a *Agent) Client() *transport.Client {
	return a.client
}

func (a *Agent) Metadata() metadata.MetadataService {
	return a.metadataService
}

func (a *Agent) SessionStore() persistence.SessionStore {
	return a.sessionStore
}

// NewSession returns a machine for a fresh run of processName.
func (a *Agent) NewSession(processName string) *process.Machine {
	return process.NewMachine(process.NewDriver(a.client), process.NewPoller(a.client), processName)
}

// ResumeSession loads a saved session and continues it.
func (a *Agent) ResumeSession(ctx context.Context, sessionId string) (*process.Machine, error) {
	session, err := a.sessionStore.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return process.ResumeMachine(process.NewDriver(a.client), process.NewPoller(a.client), session)
}

// Runner returns a runner that saves sessions to the agent's store and polls on the
// configured schedule.
func (a *Agent) Runner(input process.StepInput) *process.Runner {
	interval := a.Config.PollInterval
	if interval <= 0 {
		interval = process.DEFAULT_POLL_INTERVAL
	}
	timeout := a.Config.PollTimeout
	return &process.Runner{
		Input: input,
		Store: a.sessionStore,
		BackOff: func() backoff.BackOff {
			return process.NewPollBackOff(interval, timeout)
		},
	}
}

// Closed reports whether Shutdown has run.
func (a *Agent) Closed() bool {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	return a.shutdown
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	var firstErr error
	for _, fn := range a.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
