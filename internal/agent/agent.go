// Package agent implements the multi-agent monitoring and decision engine:
// four independently scheduled workers (ticker, analysis, news, trading)
// coordinated by an orchestrator over channel-based event streams.
package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// Agent is the lifecycle interface shared by all workers.
type Agent interface {
	// Name returns the agent's unique name.
	Name() string
	// Type returns the agent type.
	Type() types.AgentType
	// Start transitions the agent to ACTIVE, runs one immediate work cycle
	// and arms the recurring timer. Starting an active agent is an error.
	Start(ctx context.Context) error
	// Stop disarms the timer and transitions to INACTIVE unconditionally,
	// even mid-error. An in-flight cycle is allowed to complete; cancellation
	// is observed at the next tick boundary.
	Stop() error
	// State returns the agent's externally visible status snapshot.
	State() types.AgentState
	// Events returns the agent's event stream.
	Events() *EventBus
}

// cycleFunc is one scheduled unit of work. A non-nil error transitions the
// agent to ERROR without disarming the timer: the next tick is a self-heal
// attempt.
type cycleFunc func(ctx context.Context) error

// baseAgent implements the shared INACTIVE -> ACTIVE -> (ERROR | INACTIVE)
// state machine and the periodic scheduler.
type baseAgent struct {
	mu       sync.Mutex
	state    types.AgentState
	interval time.Duration

	bus *EventBus
	log *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func newBaseAgent(name string, agentType types.AgentType, interval time.Duration, log *logger.Logger) baseAgent {
	return baseAgent{
		state: types.AgentState{
			Name:        name,
			Type:        agentType,
			Status:      types.AgentStatusInactive,
			LastUpdated: time.Time{},
		},
		interval: interval,
		bus:      NewEventBus(DefaultEventBusBufferSize),
		log:      log,
	}
}

// Name implements Agent.
func (a *baseAgent) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.Name
}

// Type implements Agent.
func (a *baseAgent) Type() types.AgentType {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.Type
}

// State implements Agent.
func (a *baseAgent) State() types.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Events implements Agent.
func (a *baseAgent) Events() *EventBus {
	return a.bus
}

// start arms the scheduler with the given cycle. The first cycle runs
// immediately on the scheduler goroutine.
func (a *baseAgent) start(ctx context.Context, cycle cycleFunc) error {
	a.mu.Lock()

	// A scheduler in ERROR still owns the timer; only a stopped agent may
	// start.
	if a.state.Status == types.AgentStatusActive || a.done != nil {
		name := a.state.Name
		a.mu.Unlock()

		return errors.Newf(errors.ErrCodeAgentAlreadyActive, "agent %s is already active", name)
	}

	if a.interval <= 0 {
		a.mu.Unlock()

		return errors.New(errors.ErrCodeInvalidConfiguration, "agent interval must be positive")
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	a.state.Status = types.AgentStatusActive
	a.state.LastUpdated = time.Now()

	name := a.state.Name
	interval := a.interval
	a.mu.Unlock()

	a.log.Info("agent started",
		zap.String("agent", name),
		zap.Duration("interval", interval),
	)

	go a.run(runCtx, cycle, done)

	return nil
}

// Stop implements Agent. It never fails: the status becomes INACTIVE even
// when the agent was mid-error.
func (a *baseAgent) Stop() error {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}

	a.mu.Lock()
	a.state.Status = types.AgentStatusInactive
	a.state.LastUpdated = time.Now()
	name := a.state.Name
	a.mu.Unlock()

	a.log.Info("agent stopped", zap.String("agent", name))

	return nil
}

func (a *baseAgent) run(ctx context.Context, cycle cycleFunc, done chan struct{}) {
	defer close(done)

	a.runCycle(ctx, cycle)

	ticker := time.NewTicker(a.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runCycle(ctx, cycle)
		}
	}
}

func (a *baseAgent) runCycle(ctx context.Context, cycle cycleFunc) {
	if ctx.Err() != nil {
		return
	}

	if err := cycle(ctx); err != nil {
		a.failCycle(err)

		return
	}

	a.mu.Lock()
	a.state.Status = types.AgentStatusActive
	a.state.LastUpdated = time.Now()
	a.mu.Unlock()
}

// failCycle records a whole-cycle failure: ERROR status and an error event,
// with the timer left armed so the next tick can self-heal.
func (a *baseAgent) failCycle(err error) {
	a.mu.Lock()
	a.state.Status = types.AgentStatusError
	a.state.LastUpdated = time.Now()
	name := a.state.Name
	a.mu.Unlock()

	a.log.Error("agent cycle failed",
		zap.String("agent", name),
		zap.Error(err),
	)

	a.bus.Publish(NewEvent(EventTypeError, name, AgentError{Agent: name, Err: err}))
}

func (a *baseAgent) pollInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.interval
}

// setInterval adjusts the poll interval; effective on the next Start.
func (a *baseAgent) setInterval(interval time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if interval > 0 {
		a.interval = interval
	}
}
