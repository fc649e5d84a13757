// Package agent binds one bridge connection to one advisor.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nstehr/volley/volley-core/ipc"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/tactics"
	"github.com/nstehr/volley/volley-core/telemetry"
	"github.com/nstehr/volley/volley-core/tuning"
)

var ErrNoHello = errors.New("snapshot before hello")

// Config is shared by every agent of the process.
type Config struct {
	Tuning   tuning.Tuning
	Doctrine tactics.Doctrine
	// Sink receives every agent's records, e.g. a broadcaster or index.
	Sink telemetry.Sink
	// RecordDir, if set, gets one recorder per agent.
	RecordDir string
	Log       *slog.Logger
}

// Agent owns the decision-making for a single controlled agent.
type Agent struct {
	Conn *ipc.Connection
	Name string

	cfg        Config
	ctx        context.Context
	validator  *ipc.SnapshotValidator
	advisor    *tactics.Advisor
	strategist *Strategist
	recorder   *telemetry.Recorder
	prev       *stateSnapshot
	log        *slog.Logger
}

func New(ctx context.Context, conn *ipc.Connection, cfg Config) (*Agent, error) {
	v, err := ipc.NewSnapshotValidator()
	if err != nil {
		return nil, err
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = telemetry.Nop{}
	}
	return &Agent{Conn: conn, cfg: cfg, ctx: ctx, validator: v, log: cfg.Log}, nil
}

// HandleHello identifies the agent and builds its advisor.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if a.advisor != nil {
		return nil, fmt.Errorf("duplicate hello from %q", hello.Name)
	}

	a.Name = hello.Name
	if a.Conn != nil {
		a.Conn.Agent = hello.Name
	}
	a.log = a.cfg.Log.With("agent", hello.Name)

	doctrine := a.cfg.Doctrine
	if hello.Doctrine != "" {
		d, err := tactics.LoadDoctrine(hello.Doctrine)
		if err != nil {
			a.log.Warn("hello doctrine ignored", "path", hello.Doctrine, "error", err)
		} else {
			doctrine = d
		}
	}

	sinks := telemetry.Multi{telemetry.Logger{Log: a.log}, a.cfg.Sink}
	if a.cfg.RecordDir != "" {
		a.recorder = telemetry.NewRecorder(filepath.Join(a.cfg.RecordDir, hello.Name), "ticks")
		sinks = append(sinks, a.recorder)
	}
	adv, err := tactics.NewAdvisor(a.cfg.Tuning, doctrine,
		tactics.WithLogger(a.log),
		tactics.WithSink(sinks),
	)
	if err != nil {
		return nil, err
	}
	a.advisor = adv
	a.strategist = NewStrategist(adv, doctrine, a.cfg.Tuning.Strategist.EveryTicks, a.log)
	a.log.Info("agent identified", "index", hello.Index, "team", hello.Team, "doctrine", doctrine.Name)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleSnapshot runs one decision tick and answers with controls. A
// snapshot that cannot be used is answered with idle controls.
func (a *Agent) HandleSnapshot(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.advisor == nil {
		return nil, ErrNoHello
	}
	w, err := a.validator.Decode(env.Data)
	if err != nil {
		a.log.Warn("snapshot rejected", "error", err)
		return a.control(-1, plan.Idle(), "")
	}

	events := detectEvents(w, a.prev)
	snap := takeSnapshot(w)
	a.prev = &snap
	if len(events) > 0 {
		a.log.Info("match events", "tick", w.Tick, "events", formatEvents(events))
	}
	for _, e := range events {
		if e.ResetsPlan() {
			a.advisor.Reset(string(e.Kind))
			break
		}
	}
	me, _ := w.Me()
	a.strategist.Observe(w, me.Team, events)

	out, err := a.advisor.Tick(a.ctx, w)
	if err != nil {
		a.log.Error("tick failed", "tick", w.Tick, "error", err)
		return a.control(w.Tick, plan.Idle(), "")
	}
	desc := ""
	if p := a.advisor.Plan(); p != nil {
		desc = p.Situation()
	}
	return a.control(w.Tick, out, desc)
}

func (a *Agent) control(tick int, out plan.Output, desc string) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeControl, ipc.ControlMessage{Tick: tick, Output: out.Clamped(), Plan: desc})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// Close flushes the agent's recorder.
func (a *Agent) Close() error {
	if a.recorder != nil {
		return a.recorder.Close()
	}
	return nil
}
