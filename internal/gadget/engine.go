package gadget

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultCodeTTL is how long a self-destruct code stays valid when no TTL is configured.
const DefaultCodeTTL = 5 * time.Minute

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Engine implements the gadget lifecycle over a Repository.
//
// All public methods are safe for concurrent use. Mutations are serialised
// by the storage engine, not by the Engine.
type Engine struct {
	repo     Repository
	random   Randomizer
	codes    *codeStore
	notifier Notifier
	logger   Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomizer replaces the DefaultRandomizer.
func WithRandomizer(r Randomizer) Option {
	return func(e *Engine) { e.random = r }
}

// WithNotifier sets the lifecycle event sink.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCodeTTL sets how long self-destruct codes stay valid.
func WithCodeTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.codes.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.codes.now = now
	}
}

// NewEngine creates a gadget lifecycle engine.
func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:     repo,
		random:   DefaultRandomizer{},
		codes:    newCodeStore(DefaultCodeTTL),
		notifier: noopNotifier{},
		logger:   noopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run prunes expired self-destruct codes until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.codes.cleanLoop(ctx, func(removed int) {
		e.logger.Debug("expired self-destruct codes pruned", "count", removed)
	})
}

// Create adds a gadget with a random codename and status.
func (e *Engine) Create(ctx context.Context) (*Gadget, error) {
	g := &Gadget{
		Name:             e.random.Codename(),
		Status:           e.random.Status(),
		DecommissionedAt: e.now().UTC(),
	}
	if err := e.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("creating gadget: %w", err)
	}

	e.logger.Info("gadget created", "id", g.ID, "name", g.Name, "status", g.Status)
	e.emit(ctx, EventCreated, *g)
	return g, nil
}

// List returns gadgets, optionally filtered by status.
//
// Without a filter every gadget is annotated with a fresh probability and an
// empty inventory is ErrNoGadgets. With a filter the annotation is omitted
// and an empty result is not an error.
func (e *Engine) List(ctx context.Context, filter *Status) ([]Listed, error) {
	gadgets, err := e.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing gadgets: %w", err)
	}

	if filter == nil && len(gadgets) == 0 {
		return nil, ErrNoGadgets
	}

	listed := make([]Listed, len(gadgets))
	for i, g := range gadgets {
		listed[i] = Listed{Gadget: g}
		if filter == nil {
			listed[i].MissionSuccessProbability = formatProbability(e.random.Probability())
		}
	}
	return listed, nil
}

// Get returns a single gadget.
func (e *Engine) Get(ctx context.Context, id int64) (*Gadget, error) {
	return e.repo.Get(ctx, id)
}

// Update applies a partial change. An empty update only checks existence.
func (e *Engine) Update(ctx context.Context, id int64, u Update) (*Gadget, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	g, err := e.repo.Update(ctx, id, u)
	if err != nil {
		return nil, wrapNotFound("updating gadget", err)
	}

	// Moving to Decommissioned through PATCH stamps the time the same way Retire does.
	if u.Status != nil && *u.Status == StatusDecommissioned {
		if g, err = e.repo.Retire(ctx, id, e.now()); err != nil {
			return nil, wrapNotFound("updating gadget", err)
		}
		e.codes.forget(id)
	}

	if !u.IsEmpty() {
		e.logger.Info("gadget updated", "id", g.ID, "status", g.Status)
		e.emit(ctx, EventUpdated, *g)
	}
	return g, nil
}

// Retire marks a gadget Decommissioned and stamps the retirement time.
// Repeating it is allowed and never moves the timestamp backwards.
func (e *Engine) Retire(ctx context.Context, id int64) (*Gadget, error) {
	g, err := e.repo.Retire(ctx, id, e.now())
	if err != nil {
		return nil, wrapNotFound("retiring gadget", err)
	}

	e.codes.forget(id)
	e.logger.Info("gadget decommissioned", "id", g.ID, "at", g.DecommissionedAt)
	e.emit(ctx, EventDecommissioned, *g)
	return g, nil
}

// SelfDestruct arms the self-destruct sequence for a gadget and returns the
// confirmation code. The gadget itself is not modified.
func (e *Engine) SelfDestruct(ctx context.Context, id int64) (*SelfDestructTicket, error) {
	g, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("arming self-destruct", err)
	}

	code, err := e.random.ConfirmationCode()
	if err != nil {
		return nil, err
	}
	expiresAt := e.codes.put(id, code)

	e.logger.Info("self-destruct armed", "id", id, "expires_at", expiresAt)
	e.emit(ctx, EventSelfDestructArmed, *g)
	return &SelfDestructTicket{
		GadgetID:         id,
		ConfirmationCode: code,
		ExpiresAt:        expiresAt,
	}, nil
}

// ConfirmSelfDestruct consumes code and marks the gadget Destroyed.
func (e *Engine) ConfirmSelfDestruct(ctx context.Context, id int64, code string) (*Gadget, error) {
	if _, err := e.repo.Get(ctx, id); err != nil {
		return nil, wrapNotFound("confirming self-destruct", err)
	}

	if code == "" || !e.codes.consume(id, code) {
		e.logger.Warn("self-destruct confirmation rejected", "id", id)
		return nil, ErrInvalidConfirmation
	}

	g, err := e.repo.SetStatus(ctx, id, StatusDestroyed)
	if err != nil {
		return nil, wrapNotFound("destroying gadget", err)
	}

	e.logger.Info("gadget destroyed", "id", id)
	e.emit(ctx, EventDestroyed, *g)
	return g, nil
}

func (e *Engine) emit(ctx context.Context, typ EventType, g Gadget) {
	ev := Event{Type: typ, Gadget: g, At: e.now().UTC()}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		e.logger.Warn("lifecycle notification failed", "type", typ, "id", g.ID, "error", err)
	}
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, ErrGadgetNotFound) {
		return ErrGadgetNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
