package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/symbolduel/internal/dependencies/clock"
	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
	"github.com/mcoot/symbolduel/internal/services/readiness"
	"github.com/mcoot/symbolduel/internal/services/registry"
	"github.com/mcoot/symbolduel/internal/storage"
)

// ErrClosed is returned once the orchestrator has shut down
var ErrClosed = errors.New("orchestrator closed")

var (
	// errStale marks a timer or judge reply that belongs to an earlier round
	errStale = errors.New("stale event")
	// errDiscarded marks an answer that is silently ignored
	errDiscarded = errors.New("answer discarded")
)

// Notifier delivers messages to the live connections of a room
type Notifier interface {
	Broadcast(roomID model.RoomID, msg protocol.Outbound)
}

// Config holds orchestrator settings
type Config struct {
	// JudgeTimeout bounds each call to the sequence judge
	JudgeTimeout time.Duration
	// MailboxSize is the buffer of each room's task queue
	MailboxSize int
}

// DefaultConfig returns default orchestrator settings
func DefaultConfig() Config {
	return Config{
		JudgeTimeout: 5 * time.Second,
		MailboxSize:  64,
	}
}

// ControllerInterface defines the room operations driven by players
type ControllerInterface interface {
	Join(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, error)
	MarkReady(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, error)
	Submit(ctx context.Context, roomID model.RoomID, sub protocol.SubmitSequence) error
}

// Ensure Orchestrator implements ControllerInterface
var _ ControllerInterface = (*Orchestrator)(nil)

// Orchestrator drives rooms through their rounds. Each room is owned by a
// single actor goroutine that runs every trigger for that room in order;
// judge calls and timers run elsewhere and report back through the actor.
type Orchestrator struct {
	registry  *registry.Registry
	readiness *readiness.Coordinator
	judge     judge.Judge
	notifier  Notifier
	matches   storage.MatchStore
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	actors map[model.RoomID]*actor
	closed bool
}

type actor struct {
	roomID model.RoomID
	inbox  chan func(ctx context.Context)
}

// New creates a new Orchestrator. matches may be nil to skip match history.
func New(
	registry *registry.Registry,
	readiness *readiness.Coordinator,
	judge judge.Judge,
	notifier Notifier,
	matches storage.MatchStore,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if cfg.JudgeTimeout <= 0 {
		cfg.JudgeTimeout = DefaultConfig().JudgeTimeout
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultConfig().MailboxSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		registry:  registry,
		readiness: readiness,
		judge:     judge,
		notifier:  notifier,
		matches:   matches,
		clock:     clock,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "orchestrator")),
		ctx:       ctx,
		cancel:    cancel,
		actors:    make(map[model.RoomID]*actor),
	}
}

// Close stops every room actor and waits for in-flight work to finish
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
	o.logger.Info("orchestrator stopped")
}

// actorFor returns the room's actor, starting it on first use. The room
// lookup runs outside o.mu so a slow store only delays this room.
func (o *Orchestrator) actorFor(ctx context.Context, roomID model.RoomID) (*actor, error) {
	if a, ok, err := o.existingActor(roomID); ok || err != nil {
		return a, err
	}

	if _, err := o.registry.Get(ctx, roomID); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrClosed
	}
	if a, ok := o.actors[roomID]; ok {
		return a, nil
	}

	a := &actor{
		roomID: roomID,
		inbox:  make(chan func(ctx context.Context), o.cfg.MailboxSize),
	}
	o.actors[roomID] = a
	o.wg.Add(1)
	go o.run(a)
	return a, nil
}

func (o *Orchestrator) run(a *actor) {
	defer o.wg.Done()
	for {
		select {
		case task := <-a.inbox:
			task(o.ctx)
		case <-o.ctx.Done():
			return
		}
	}
}

// call runs fn on the room's actor and waits for its result. fn always
// runs to completion once started, even if ctx is cancelled meanwhile.
func (o *Orchestrator) existingActor(roomID model.RoomID) (*actor, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, false, ErrClosed
	}
	a, ok := o.actors[roomID]
	return a, ok, nil
}

func (o *Orchestrator) call(ctx context.Context, roomID model.RoomID, fn func(ctx context.Context) error) error {
	a, err := o.actorFor(ctx, roomID)
	if err != nil {
		return err
	}

	result := make(chan error, 1)
	task := func(actx context.Context) { result <- fn(actx) }

	select {
	case a.inbox <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-o.ctx.Done():
		return ErrClosed
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-o.ctx.Done():
		return ErrClosed
	}
}

// post queues fn on the room's actor without waiting
func (o *Orchestrator) post(roomID model.RoomID, fn func(ctx context.Context)) {
	a, err := o.actorFor(o.ctx, roomID)
	if err != nil {
		o.logger.Debug("dropping event",
			slog.String("room_id", string(roomID)),
			slog.String("reason", err.Error()),
		)
		return
	}
	select {
	case a.inbox <- fn:
	case <-o.ctx.Done():
	}
}

// goJudge runs fn off the actor with a bounded context
func (o *Orchestrator) goJudge(fn func(ctx context.Context)) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(o.ctx, o.cfg.JudgeTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (o *Orchestrator) roomLogger(roomID model.RoomID) *slog.Logger {
	return o.logger.With(slog.String("room_id", string(roomID)))
}
