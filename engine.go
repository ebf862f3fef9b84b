// Package audioengine implements the real-time audio device engine state machine: a single
// control-thread function that diffs a requested State against the committed one and drives
// an AVAudioEngine-style node graph and PCM buffer through an ordered, rollback-capable
// reconfiguration.
package audioengine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/shaban/audioengine/avaudio/sinknode"
	"github.com/shaban/audioengine/avaudio/sourcenode"
	"github.com/shaban/audioengine/internal/pcmbuffer"
	"github.com/shaban/audioengine/internal/pcmconvert"
	engnode "github.com/shaban/audioengine/avaudio/engine"
)

// deviceGraph tracks every native pointer the device-mode applier is responsible for
// tearing down. It is only ever touched from the control goroutine.
type deviceGraph struct {
	eng *engnode.Engine

	outputNodePtr unsafe.Pointer
	inputNodePtr  unsafe.Pointer
	mainMixerPtr  unsafe.Pointer
	inputMixerPtr unsafe.Pointer

	outputAttached bool
	inputAttached  bool

	sourceNode *sourcenode.SourceNode
	sinkNode   *sinknode.SinkNode
	converter  *pcmconvert.Converter

	outputPump   chan struct{} // closed to stop the output pump goroutine
	outputPumpWG sync.WaitGroup

	capturePump   chan struct{} // closed to stop the capture pump goroutine
	capturePumpWG sync.WaitGroup

	speechPollStop chan struct{}
	speechPollWG   sync.WaitGroup

	outputTap *engnode.Tap
	inputTap  *engnode.Tap

	configChangeListener bool
}

// manualGraph tracks the manual-mode engine object and render thread.
type manualGraph struct {
	eng        *engnode.Engine
	sourceNode *sourcenode.SourceNode

	sampleRate    int
	maxFrameCount int

	quit   chan struct{}
	wg     sync.WaitGroup
	render []int16
}

// controlRequest is one posted unit of work for the control goroutine: a transform plus a
// response channel the caller blocks on.
type controlRequest struct {
	run  func() error
	resp chan error
}

// Engine is the long-lived object the whole state machine hangs off of. Every field below
// this point is owned by the control goroutine; cross-goroutine access always goes through
// requests chan.
type Engine struct {
	cfg      Config
	observer Observer
	logger   *slog.Logger

	buffer *pcmbuffer.Buffer

	state State

	requests chan controlRequest
	ctx      context.Context
	cancel   context.CancelFunc

	device deviceGraph
	manual manualGraph

	watcherCancel context.CancelFunc
	debounceOut   *debouncer
	debounceIn    *debouncer
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver installs the caller's Observer instead of NoopObserver.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithConfig overrides DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// New constructs an Engine and starts its control goroutine. The engine owns no native
// graph objects until the first ModifyEngineState enables a side.
func New(opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:      DefaultConfig(),
		observer: NoopObserver{},
		logger:   slog.Default(),
		buffer:   pcmbuffer.New(),
		requests: make(chan controlRequest, 32),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = DefaultState()
	e.state.RenderMode = e.cfg.InitialRenderMode
	e.state.MuteMode = e.cfg.InitialMuteMode
	e.state.InputFollowMode = e.cfg.InitialInputFollowMode

	e.debounceOut = newDebouncer(e.cfg.DefaultDeviceDebounce)
	e.debounceIn = newDebouncer(e.cfg.DefaultDeviceDebounce)

	go e.controlLoop()
	e.startDeviceWatcher()
	return e
}

// controlLoop is the single-threaded cooperative scheduler: every state read, write, and
// graph edit happens here, fed by the buffered requests channel.
func (e *Engine) controlLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case req := <-e.requests:
			err := req.run()
			select {
			case req.resp <- err:
			default:
			}
		}
	}
}

// submit posts fn to the control goroutine and blocks for its result. Every public setter
// and getter funnels through this.
func (e *Engine) submit(fn func() error) error {
	resp := make(chan error, 1)
	select {
	case <-e.ctx.Done():
		return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "engine is terminated"}
	case e.requests <- controlRequest{run: fn, resp: resp}:
	}
	select {
	case err := <-resp:
		return err
	case <-e.ctx.Done():
		return &EngineError{Kind: KindInitFailure, Code: ErrInitFailure, Message: "engine is terminated"}
	}
}

// ModifyEngineState is the sole mutator of engine_state_ (spec.md §4.1). transform receives
// the current committed state and returns the desired next state.
func (e *Engine) ModifyEngineState(transform func(State) State) error {
	return e.submit(func() error {
		return e.modifyEngineStateLocked(transform)
	})
}

func (e *Engine) modifyEngineStateLocked(transform func(State) State) error {
	prev := e.state
	next := transform(prev)
	diff := newStateUpdate(prev, next)

	if diff.HasNoChanges() {
		return nil
	}

	if err := next.Validate(); err != nil {
		return err
	}

	var err error
	switch {
	case diff.DidEnableManualRenderingMode():
		shutdown := newStateUpdate(prev, State{})
		if err = e.applyDeviceMode(shutdown); err != nil {
			break
		}
		startup := newStateUpdate(State{}, next)
		err = e.applyManualMode(startup)
	case diff.DidEnableDeviceRenderingMode():
		shutdown := newStateUpdate(prev, State{})
		if err = e.applyManualMode(shutdown); err != nil {
			break
		}
		startup := newStateUpdate(State{}, next)
		err = e.applyDeviceMode(startup)
	case next.RenderMode == RenderModeManual:
		err = e.applyManualMode(diff)
	default:
		err = e.applyDeviceMode(diff)
	}

	if err != nil {
		e.logger.Error("state transition failed", "error", err)
		return err
	}

	e.state = next
	e.logger.Info("state transition committed",
		slog.Bool("input_enabled", next.IsInputEnabled()),
		slog.Bool("output_enabled", next.IsOutputEnabled()),
		slog.String("render_mode", next.RenderMode.String()),
		slog.String("mute_mode", next.MuteMode.String()),
	)
	e.assertInvariants(next)
	return nil
}

// assertInvariants is a best-effort runtime check of spec.md §3.1's final invariants; it
// logs rather than panics, since a release build must not crash on a caught-late bug.
func (e *Engine) assertInvariants(s State) {
	if e.buffer.IsPlaying() != s.IsOutputEnabled() {
		e.logger.Error("invariant violated: buffer playing != IsOutputEnabled")
	}
	if e.buffer.IsRecording() != s.IsInputEnabled() {
		e.logger.Error("invariant violated: buffer recording != IsInputEnabled")
	}
}

// GetEngineState returns a snapshot of the committed state, safe to call from any goroutine.
func (e *Engine) GetEngineState() State {
	var snapshot State
	_ = e.submit(func() error {
		snapshot = e.state
		return nil
	})
	return snapshot
}

// SetEngineState is the blunt setter spec.md §6 names alongside the getter: it replaces the
// whole state via ModifyEngineState rather than mutating fields directly.
func (e *Engine) SetEngineState(s State) error {
	return e.ModifyEngineState(func(State) State { return s })
}

// IsEngineRunning reports IsAnyRunning of the committed state.
func (e *Engine) IsEngineRunning() bool {
	return e.GetEngineState().IsAnyRunning()
}

// Terminate stops the control goroutine, the render thread (if any), and the device watcher,
// and tears down any native graph objects by driving the state to all-off first.
func (e *Engine) Terminate() error {
	_ = e.SetEngineState(State{RenderMode: e.GetEngineState().RenderMode})
	if e.watcherCancel != nil {
		e.watcherCancel()
	}
	e.cancel()
	return nil
}

func (e *Engine) logf(format string, args ...any) {
	e.logger.Debug(fmt.Sprintf(format, args...))
}
