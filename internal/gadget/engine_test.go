package gadget

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingNotifier) {
	t.Helper()

	n := &recordingNotifier{}
	base := []Option{
		WithRandomizer(fixedRandom{name: "The Sphinx", status: StatusAvailable, probability: 73, code: "ZX81AB"}),
		WithNotifier(n),
	}
	return NewEngine(testRepo(t), append(base, opts...)...), n
}

func TestEngine_Create(t *testing.T) {
	e, n := newTestEngine(t)

	g, err := e.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.ID == 0 || g.Name != "The Sphinx" || g.Status != StatusAvailable {
		t.Errorf("Create() = %+v", g)
	}
	if !slices.Equal(n.types(), []EventType{EventCreated}) {
		t.Errorf("events = %v, want [created]", n.types())
	}
}

func TestEngine_CreateWithDefaultRandomizer(t *testing.T) {
	e := NewEngine(testRepo(t))

	g, err := e.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !slices.Contains(codenames, g.Name) {
		t.Errorf("Name = %q, not in roster", g.Name)
	}
	if !slices.Contains(AllStatuses, g.Status) {
		t.Errorf("Status = %q, not in enumeration", g.Status)
	}
}

func TestEngine_ListEmptyInventory(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.List(ctx, nil); !errors.Is(err, ErrNoGadgets) {
		t.Errorf("List(nil) error = %v, want ErrNoGadgets", err)
	}

	status := StatusAvailable
	got, err := e.List(ctx, &status)
	if err != nil {
		t.Fatalf("List(filter) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List(filter) = %v, want empty", got)
	}
}

func TestEngine_ListProbability(t *testing.T) {
	e := NewEngine(testRepo(t))
	ctx := context.Background()

	for range 3 {
		if _, err := e.Create(ctx); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	pattern := regexp.MustCompile(`^\d{1,3}%$`)
	listed, err := e.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("List() returned %d, want 3", len(listed))
	}
	for _, l := range listed {
		p := l.MissionSuccessProbability
		if !pattern.MatchString(p) {
			t.Fatalf("probability %q does not match pattern", p)
		}
		n, _ := strconv.Atoi(strings.TrimSuffix(p, "%"))
		if n < 1 || n > 100 {
			t.Errorf("probability %d outside [1,100]", n)
		}
	}
}

func TestEngine_ListFilterHasNoProbability(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Create(ctx); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusAvailable
	listed, err := e.List(ctx, &status)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 || listed[0].MissionSuccessProbability != "" {
		t.Errorf("List(filter) = %+v, want one gadget without probability", listed)
	}
}

func TestEngine_Update(t *testing.T) {
	e, n := newTestEngine(t)
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := StatusDeployed
	got, err := e.Update(ctx, g.ID, Update{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Status != StatusDeployed {
		t.Errorf("Status = %q, want Deployed", got.Status)
	}

	if _, err := e.Update(ctx, g.ID, Update{}); err != nil {
		t.Errorf("empty Update() error = %v", err)
	}
	if !slices.Equal(n.types(), []EventType{EventCreated, EventUpdated}) {
		t.Errorf("events = %v, empty update should not emit", n.types())
	}

	if _, err := e.Update(ctx, 999999, Update{Status: &status}); !errors.Is(err, ErrGadgetNotFound) {
		t.Errorf("Update() unknown id error = %v, want ErrGadgetNotFound", err)
	}

	blank := ""
	if _, err := e.Update(ctx, g.ID, Update{Name: &blank}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Update() blank name error = %v, want ErrInvalidName", err)
	}
}

func TestEngine_UpdateToDecommissionedStampsTime(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	e, _ := newTestEngine(t, WithClock(clock.Now))
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.SelfDestruct(ctx, g.ID); err != nil {
		t.Fatalf("SelfDestruct() error = %v", err)
	}

	clock.Advance(time.Hour)
	deployed := StatusDeployed
	got, err := e.Update(ctx, g.ID, Update{Status: &deployed})
	if err != nil {
		t.Fatalf("Update(Deployed) error = %v", err)
	}
	if !got.DecommissionedAt.Equal(g.DecommissionedAt) {
		t.Errorf("Update(Deployed) moved decommissioned_at to %v", got.DecommissionedAt)
	}

	clock.Advance(time.Hour)
	retired := StatusDecommissioned
	got, err = e.Update(ctx, g.ID, Update{Status: &retired})
	if err != nil {
		t.Fatalf("Update(Decommissioned) error = %v", err)
	}
	if got.Status != StatusDecommissioned {
		t.Errorf("Status = %q, want Decommissioned", got.Status)
	}
	if want := clock.Now(); !got.DecommissionedAt.Equal(want) {
		t.Errorf("DecommissionedAt = %v, want %v", got.DecommissionedAt, want)
	}

	if _, err := e.ConfirmSelfDestruct(ctx, g.ID, "ZX81AB"); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("ConfirmSelfDestruct() after decommission error = %v, want ErrInvalidConfirmation", err)
	}
}

func TestEngine_RetireTwice(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := e.Retire(ctx, g.ID)
	if err != nil {
		t.Fatalf("Retire() error = %v", err)
	}
	second, err := e.Retire(ctx, g.ID)
	if err != nil {
		t.Fatalf("Retire() second error = %v", err)
	}
	if first.Status != StatusDecommissioned || second.Status != StatusDecommissioned {
		t.Errorf("statuses = %q, %q", first.Status, second.Status)
	}
	if second.DecommissionedAt.Before(first.DecommissionedAt) {
		t.Errorf("timestamps decreased: %v then %v", first.DecommissionedAt, second.DecommissionedAt)
	}

	if _, err := e.Retire(ctx, 999999); !errors.Is(err, ErrGadgetNotFound) {
		t.Errorf("Retire() unknown id error = %v, want ErrGadgetNotFound", err)
	}
}

func TestEngine_SelfDestructFlow(t *testing.T) {
	e, n := newTestEngine(t)
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ticket, err := e.SelfDestruct(ctx, g.ID)
	if err != nil {
		t.Fatalf("SelfDestruct() error = %v", err)
	}
	if ticket.ConfirmationCode != "ZX81AB" || ticket.GadgetID != g.ID {
		t.Errorf("ticket = %+v", ticket)
	}

	// Arming does not change the gadget.
	unchanged, err := e.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if unchanged.Status != StatusAvailable {
		t.Errorf("Status after arming = %q, want Available", unchanged.Status)
	}

	if _, err := e.ConfirmSelfDestruct(ctx, g.ID, "WRONG0"); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Confirm(wrong) error = %v, want ErrInvalidConfirmation", err)
	}

	destroyed, err := e.ConfirmSelfDestruct(ctx, g.ID, ticket.ConfirmationCode)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if destroyed.Status != StatusDestroyed {
		t.Errorf("Status = %q, want Destroyed", destroyed.Status)
	}

	if _, err := e.ConfirmSelfDestruct(ctx, g.ID, ticket.ConfirmationCode); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Confirm() reuse error = %v, want ErrInvalidConfirmation", err)
	}

	want := []EventType{EventCreated, EventSelfDestructArmed, EventDestroyed}
	if !slices.Equal(n.types(), want) {
		t.Errorf("events = %v, want %v", n.types(), want)
	}
}

func TestEngine_SelfDestructExpiredCode(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	e, _ := newTestEngine(t, WithClock(clock.Now), WithCodeTTL(30*time.Second))
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ticket, err := e.SelfDestruct(ctx, g.ID)
	if err != nil {
		t.Fatalf("SelfDestruct() error = %v", err)
	}
	if !ticket.ExpiresAt.Equal(clock.Now().Add(30 * time.Second)) {
		t.Errorf("ExpiresAt = %v, want now+30s", ticket.ExpiresAt)
	}

	clock.Advance(time.Minute)
	if _, err := e.ConfirmSelfDestruct(ctx, g.ID, ticket.ConfirmationCode); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Confirm() expired error = %v, want ErrInvalidConfirmation", err)
	}
}

func TestEngine_SelfDestructUnknownGadget(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.SelfDestruct(ctx, 999999); !errors.Is(err, ErrGadgetNotFound) {
		t.Errorf("SelfDestruct() error = %v, want ErrGadgetNotFound", err)
	}
	if _, err := e.ConfirmSelfDestruct(ctx, 999999, "ABCDEF"); !errors.Is(err, ErrGadgetNotFound) {
		t.Errorf("ConfirmSelfDestruct() error = %v, want ErrGadgetNotFound", err)
	}
}

func TestEngine_RetireDisarmsSelfDestruct(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	g, err := e.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ticket, err := e.SelfDestruct(ctx, g.ID)
	if err != nil {
		t.Fatalf("SelfDestruct() error = %v", err)
	}
	if _, err := e.Retire(ctx, g.ID); err != nil {
		t.Fatalf("Retire() error = %v", err)
	}
	if _, err := e.ConfirmSelfDestruct(ctx, g.ID, ticket.ConfirmationCode); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Confirm() after retire error = %v, want ErrInvalidConfirmation", err)
	}
}

func TestEngine_NotifierFailureDoesNotFail(t *testing.T) {
	n := &recordingNotifier{err: errors.New("broker down")}
	e := NewEngine(testRepo(t), WithNotifier(n))

	if _, err := e.Create(context.Background()); err != nil {
		t.Fatalf("Create() error = %v, notifier failures must not propagate", err)
	}
	if len(n.types()) != 1 {
		t.Errorf("notifier called %d times, want 1", len(n.types()))
	}
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	e := NewEngine(testRepo(t), WithCodeTTL(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
