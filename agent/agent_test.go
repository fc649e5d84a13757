package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/nstehr/volley/volley-core/ipc"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/tactics"
	"github.com/nstehr/volley/volley-core/tuning"
)

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	a, err := New(context.Background(), nil, Config{
		Tuning:   tuning.Default(),
		Doctrine: tactics.DefaultDoctrine(),
		Log:      slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func envelope(t *testing.T, typ string, v any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(typ, v)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func hello(t *testing.T, a *Agent) {
	t.Helper()
	resp, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Name: "striker", Team: model.Blue}))
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("expected ack, got %+v", resp)
	}
}

func decodeControl(t *testing.T, env *ipc.Envelope) ipc.ControlMessage {
	t.Helper()
	if env == nil || env.Type != ipc.TypeControl {
		t.Fatalf("expected control envelope, got %+v", env)
	}
	var msg ipc.ControlMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestSnapshotBeforeHello(t *testing.T) {
	a := newTestAgent(t)
	_, err := a.HandleSnapshot(envelope(t, ipc.TypeSnapshot, ipc.SnapshotMessage{World: baseWorld(1)}))
	if !errors.Is(err, ErrNoHello) {
		t.Errorf("expected ErrNoHello, got %v", err)
	}
}

func TestDuplicateHello(t *testing.T) {
	a := newTestAgent(t)
	hello(t, a)
	if _, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Name: "again"})); err == nil {
		t.Error("expected error on second hello")
	}
}

func TestSnapshotAnsweredWithControls(t *testing.T) {
	a := newTestAgent(t)
	hello(t, a)

	resp, err := a.HandleSnapshot(envelope(t, ipc.TypeSnapshot, ipc.SnapshotMessage{World: baseWorld(42)}))
	if err != nil {
		t.Fatalf("HandleSnapshot: %v", err)
	}
	msg := decodeControl(t, resp)
	if msg.Tick != 42 {
		t.Errorf("tick = %d, want 42", msg.Tick)
	}
	if msg.Plan == "" {
		t.Error("expected a plan description")
	}
	if a.advisor.Plan() == nil {
		t.Error("advisor has no plan after a tick")
	}
}

func TestBadSnapshotGetsIdleControls(t *testing.T) {
	a := newTestAgent(t)
	hello(t, a)

	w := baseWorld(42)
	w.Self = 9
	resp, err := a.HandleSnapshot(envelope(t, ipc.TypeSnapshot, ipc.SnapshotMessage{World: w}))
	if err != nil {
		t.Fatalf("HandleSnapshot: %v", err)
	}
	msg := decodeControl(t, resp)
	if msg.Tick != -1 || msg.Output.Throttle != 0 || msg.Output.Boost {
		t.Errorf("expected idle controls, got %+v", msg)
	}
}

func TestGoalResetsPlan(t *testing.T) {
	a := newTestAgent(t)
	hello(t, a)

	w := baseWorld(42)
	if _, err := a.HandleSnapshot(envelope(t, ipc.TypeSnapshot, ipc.SnapshotMessage{World: w})); err != nil {
		t.Fatal(err)
	}
	before := a.advisor.Plan()

	w.Tick, w.Time = 43, w.Time+1.0/60
	w.BlueScore = 1
	if _, err := a.HandleSnapshot(envelope(t, ipc.TypeSnapshot, ipc.SnapshotMessage{World: w})); err != nil {
		t.Fatal(err)
	}
	if a.advisor.Plan() == before {
		t.Error("plan survived a goal")
	}
	if !before.IsComplete() {
		t.Error("old plan was not aborted")
	}
}
