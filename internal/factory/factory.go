package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/symbolduel/internal/dependencies/clock"
	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/dependencies/random"
	"github.com/mcoot/symbolduel/internal/gateway"
	"github.com/mcoot/symbolduel/internal/realtime"
	"github.com/mcoot/symbolduel/internal/services/identity"
	"github.com/mcoot/symbolduel/internal/services/orchestrator"
	"github.com/mcoot/symbolduel/internal/services/readiness"
	"github.com/mcoot/symbolduel/internal/services/registry"
	"github.com/mcoot/symbolduel/internal/services/sequence"
	"github.com/mcoot/symbolduel/internal/storage"
	"github.com/mcoot/symbolduel/internal/storage/memory"
	"github.com/mcoot/symbolduel/internal/storage/postgres"
	redisstorage "github.com/mcoot/symbolduel/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	// Matches is where finished matches are recorded; the main storage
	// unless a database is configured
	Matches storage.MatchStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Judge  judge.Judge

	// Services
	Registry        *registry.Registry
	Readiness       *readiness.Coordinator
	SequenceService *sequence.Service
	IdentityService *identity.Service
	Connections     *realtime.Manager
	Orchestrator    *orchestrator.Orchestrator
	Gateway         *gateway.Gateway

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL enables PostgreSQL match history when set
	DatabaseURL string
	// JudgeURL points at a remote sequence judge. If empty the in-process
	// sequence service judges rounds.
	JudgeURL string
	// JudgeTimeout bounds each judge call. Zero uses the orchestrator default.
	JudgeTimeout time.Duration
	// Sequence configures the in-process sequence service
	// If zero value, defaults to sequence.DefaultConfig()
	Sequence sequence.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []func() error

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var matches storage.MatchStore = store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			closeAll(closers)
			return nil, err
		}
		matches = pg
		closers = append(closers, pg.Close)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	orchCfg := orchestrator.DefaultConfig()
	if cfg.JudgeTimeout > 0 {
		orchCfg.JudgeTimeout = cfg.JudgeTimeout
	}

	var remote judge.Judge
	if cfg.JudgeURL != "" {
		remote = judge.NewHTTPClient(cfg.JudgeURL, orchCfg.JudgeTimeout)
		logger.Info("using remote sequence judge", slog.String("url", cfg.JudgeURL))
	}

	seqCfg := cfg.Sequence
	if seqCfg == (sequence.Config{}) {
		seqCfg = sequence.DefaultConfig()
	}

	app := newWithDependencies(store, matches, clk, rnd, remote, seqCfg, orchCfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing).
// A nil judge means rounds are judged by the in-process sequence service.
func newWithDependencies(
	store storage.Storage,
	matches storage.MatchStore,
	clk clock.Clock,
	rnd random.Random,
	j judge.Judge,
	seqCfg sequence.Config,
	orchCfg orchestrator.Config,
	logger *slog.Logger,
) *App {
	// Create services
	sequenceService := sequence.New(rnd, seqCfg, logger)
	if j == nil {
		j = sequenceService
	}
	roomRegistry := registry.New(store, clk, rnd, logger)
	readinessCoordinator := readiness.New(logger)
	identityService := identity.New(store, clk, logger)
	connections := realtime.NewManager(logger)
	orch := orchestrator.New(roomRegistry, readinessCoordinator, j, connections, matches, clk, orchCfg, logger)
	gw := gateway.New(roomRegistry, orch, connections, logger)

	return &App{
		Storage:         store,
		Matches:         matches,
		Clock:           clk,
		Random:          rnd,
		Judge:           j,
		Registry:        roomRegistry,
		Readiness:       readinessCoordinator,
		SequenceService: sequenceService,
		IdentityService: identityService,
		Connections:     connections,
		Orchestrator:    orch,
		Gateway:         gw,
	}
}

// Close stops every room actor and releases storage connections
func (a *App) Close() error {
	a.Orchestrator.Close()
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
