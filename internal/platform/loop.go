// Package platform hosts the optimize-observe-train loop and its
// supervision.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"alphachip/internal/chip"
	"alphachip/internal/design"
	"alphachip/internal/model"
	"alphachip/internal/nn"
)

const defaultInterval = 100 * time.Millisecond

// Agent is the loop's view of a learner: pick the next edit, then train on
// the observed transition.
type Agent interface {
	NextAction(state model.ChipState) (model.Action, error)
	Train(state model.ChipState, action model.Action, reward float64, next model.ChipState) (float64, error)
}

// Observer receives each published snapshot. Observers run fire-and-forget;
// a panicking observer is logged and never reaches the loop.
type Observer func(state model.ChipState, action model.Action)

var ErrAlreadyRunning = errors.New("optimization loop is already running")

type LoopConfig struct {
	Agent         Agent
	Engine        *design.Engine
	Initial       model.ChipState
	Interval      time.Duration
	MaxIterations int
	Logger        *slog.Logger
}

// Loop drives one cooperative stream of iterations: action, transition,
// reward, training, publish, pacing delay. A stop request is honored between
// iterations only; an in-flight iteration always completes.
type Loop struct {
	agent    Agent
	engine   *design.Engine
	interval time.Duration
	maxIters int
	logger   *slog.Logger

	mu         sync.Mutex
	state      model.ChipState
	history    []float64
	iterations int
	observers  []Observer
	running    bool
	stop       chan struct{}
	done       chan struct{}
	runErr     error
}

func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("design engine is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Loop{
		agent:    cfg.Agent,
		engine:   cfg.Engine,
		interval: cfg.Interval,
		maxIters: cfg.MaxIterations,
		logger:   cfg.Logger,
		state:    cfg.Initial.Clone(),
	}, nil
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// State returns the latest published snapshot. Snapshots are replaced
// atomically between iterations, so readers always see a complete state.
func (l *Loop) State() model.ChipState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Loop) History() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.history...)
}

func (l *Loop) Iterations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.iterations
}

func (l *Loop) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, obs)
}

// Start transitions Idle to Running and drives the loop on its own
// goroutine. Use Wait or Stop to rejoin it.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.runErr = nil
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	stop, done := l.stop, l.done
	l.mu.Unlock()

	go func() {
		err := l.run(ctx, stop)
		l.mu.Lock()
		l.running = false
		l.runErr = err
		l.mu.Unlock()
		close(done)
	}()
	return nil
}

// Stop requests a stop and blocks until the in-flight iteration completes
// and the loop is Idle. Stopping an idle loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	done := l.done
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	l.mu.Unlock()
	<-done
}

// Wait blocks until the loop returns to Idle and reports its terminal error,
// if any.
func (l *Loop) Wait() error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runErr
}

func (l *Loop) run(ctx context.Context, stop <-chan struct{}) error {
	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		default:
		}

		l.mu.Lock()
		iterations := l.iterations
		l.mu.Unlock()
		if l.maxIters > 0 && iterations >= l.maxIters {
			return nil
		}

		if err := l.iterate(); err != nil {
			l.logger.Error("optimization iteration aborted", "error", err)
			return err
		}

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-timer.C:
		}
	}
}

// iterate runs one full optimization step. Contract violations (encoding
// failures, unknown actions) propagate; training faults are logged and the
// step's transition and publish still proceed.
func (l *Loop) iterate() error {
	current := l.State()

	action, err := l.agent.NextAction(current)
	if err != nil {
		return fmt.Errorf("select action: %w", err)
	}

	next, err := l.engine.Apply(current, action)
	if err != nil {
		return fmt.Errorf("apply %s: %w", action, err)
	}

	reward := chip.Reward(next)

	if _, err := l.agent.Train(current, action, reward, next); err != nil {
		var trainErr *nn.TrainingError
		if !errors.As(err, &trainErr) {
			return fmt.Errorf("train on %s: %w", action, err)
		}
		l.logger.Warn("training step skipped", "action", action.String(), "error", err)
	}

	l.publish(next, action)

	l.mu.Lock()
	l.state = next
	l.history = append(l.history, reward)
	l.iterations++
	l.mu.Unlock()
	return nil
}

func (l *Loop) publish(state model.ChipState, action model.Action) {
	l.mu.Lock()
	observers := append([]Observer(nil), l.observers...)
	l.mu.Unlock()

	for _, obs := range observers {
		go func(o Observer) {
			defer func() {
				if r := recover(); r != nil {
					l.logger.Warn("observer panicked", "panic", r)
				}
			}()
			o(state.Clone(), action)
		}(obs)
	}
}
