// Package dispatch submits authorized operations and executed proposals to
// the wallet SDK in the background and routes their chain outcomes back to
// the activity log and the multisig ledger.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/client/bundler"
	"github.com/cyphera/cyphera-wallet-policy/internal/clock"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when a task cannot be queued in time.
var ErrQueueFull = errors.New("dispatch queue is full, try again later")

// ActivityRecorder receives outcomes of session operations.
type ActivityRecorder interface {
	AttachHandle(ctx context.Context, activityID string, handle outcome.Handle) error
	RecordOutcome(ctx context.Context, handle outcome.Handle, result outcome.Outcome) (*session.Activity, error)
}

// ProposalRecorder receives outcomes of executed proposals.
type ProposalRecorder interface {
	AttachHandle(ctx context.Context, proposalID string, handle outcome.Handle) error
	RecordOutcome(ctx context.Context, handle outcome.Handle, result outcome.Outcome) (*multisig.Proposal, error)
}

// Config tunes the worker pool and its circuit breaker.
type Config struct {
	Workers   int
	QueueSize int

	// FailureThreshold consecutive transport failures open the circuit.
	FailureThreshold int
	// ResetTimeout is how long the circuit stays open before the wallet
	// is probed again.
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration

	EnqueueTimeout time.Duration
	// TaskTimeout bounds submission plus confirmation of one task.
	TaskTimeout time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Workers:             4,
		QueueSize:           100,
		FailureThreshold:    3,
		ResetTimeout:        5 * time.Minute,
		HealthCheckInterval: 30 * time.Second,
		EnqueueTimeout:      5 * time.Second,
		TaskTimeout:         2 * time.Minute,
	}
}

// Dispatcher processes tasks from a queue with a fixed set of workers.
type Dispatcher struct {
	tasks      chan Task
	wallet     bundler.WalletClient
	activities ActivityRecorder
	proposals  ProposalRecorder
	clock      clock.Clock
	cfg        Config
	logger     *zap.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// Circuit breaker for wallet SDK downtime
	mu                  sync.Mutex
	circuitOpen         bool
	consecutiveFailures int
	lastFailureTime     time.Time
	pendingTasks        []Task
}

// NewDispatcher creates a dispatcher. Call Start to run the workers.
func NewDispatcher(wallet bundler.WalletClient, activities ActivityRecorder, proposals ProposalRecorder, clk clock.Clock, cfg Config) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	return &Dispatcher{
		tasks:        make(chan Task, cfg.QueueSize),
		wallet:       wallet,
		activities:   activities,
		proposals:    proposals,
		clock:        clk,
		cfg:          cfg,
		logger:       logger.ForComponent(logger.ComponentDispatch),
		ctx:          ctx,
		cancel:       cancel,
		pendingTasks: make([]Task, 0),
	}
}

// Start launches the workers and the wallet health monitor.
func (d *Dispatcher) Start() {
	d.logger.Info("Starting dispatcher", zap.Int("worker_count", d.cfg.Workers))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.monitorWalletHealth()
	}()

	for i := 0; i < d.cfg.Workers; i++ {
		workerID := i
		d.wg.Add(1)

		go func() {
			defer d.wg.Done()
			d.logger.Debug("Dispatch worker started", zap.Int("worker_id", workerID))

			for {
				select {
				case <-d.ctx.Done():
					d.logger.Debug("Dispatch worker stopped", zap.Int("worker_id", workerID))
					return
				case task := <-d.tasks:
					if err := d.process(task); err != nil {
						d.logger.Error("Failed to dispatch task",
							zap.Error(err),
							zap.String("kind", string(task.Kind)),
							zap.String("ref_id", task.RefID))
					}
				}
			}
		}()
	}
}

// Stop cancels in-flight work and waits for the workers to exit. Tasks
// still queued are dropped; their records stay pending.
func (d *Dispatcher) Stop() {
	d.logger.Info("Stopping dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}

// Enqueue adds a task to the queue. While the circuit is open the task is
// parked and queued again once the wallet is reachable.
func (d *Dispatcher) Enqueue(task Task) error {
	d.mu.Lock()
	if d.circuitOpen {
		d.pendingTasks = append(d.pendingTasks, task)
		d.mu.Unlock()
		d.logger.Info("Circuit breaker open, parking task",
			zap.String("kind", string(task.Kind)),
			zap.String("ref_id", task.RefID))
		return nil
	}
	d.mu.Unlock()

	select {
	case d.tasks <- task:
		d.logger.Debug("Task queued",
			zap.String("kind", string(task.Kind)),
			zap.String("ref_id", task.RefID))
		return nil
	case <-d.ctx.Done():
		return fmt.Errorf("dispatcher stopped: %w", d.ctx.Err())
	case <-time.After(d.cfg.EnqueueTimeout):
		return ErrQueueFull
	}
}

// CircuitOpen reports whether submissions are currently parked.
func (d *Dispatcher) CircuitOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.circuitOpen
}

// PendingCount returns the number of parked tasks.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pendingTasks)
}

// process submits one task, binds the returned handle to its record and
// waits for the chain outcome.
func (d *Dispatcher) process(task Task) error {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.TaskTimeout)
	defer cancel()

	handle, err := d.wallet.SendCalls(ctx, task.Request)
	if err != nil {
		var rpcErr *bundler.RPCError
		if errors.As(err, &rpcErr) {
			// The wallet answered and refused the batch. Retrying would
			// not help, so the refusal becomes the outcome.
			return d.recordRejection(ctx, task, rpcErr)
		}
		d.recordTransportFailure(task, err)
		return fmt.Errorf("wallet unavailable: %w", err)
	}

	d.mu.Lock()
	if d.consecutiveFailures > 0 {
		d.consecutiveFailures = 0
		d.logger.Info("Reset consecutive failures counter, wallet is available")
	}
	d.mu.Unlock()

	if err := d.attach(ctx, task, handle); err != nil {
		return fmt.Errorf("failed to attach handle %s: %w", handle, err)
	}

	d.logger.Info("Calls submitted",
		zap.String("kind", string(task.Kind)),
		zap.String("ref_id", task.RefID),
		zap.String("handle", string(handle)))

	result, err := d.wallet.AwaitConfirmation(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to await confirmation of %s: %w", handle, err)
	}
	return d.record(ctx, task.Kind, handle, result)
}

func (d *Dispatcher) recordRejection(ctx context.Context, task Task, rpcErr *bundler.RPCError) error {
	handle := outcome.Handle("rejected:" + task.RefID)
	if err := d.attach(ctx, task, handle); err != nil {
		return fmt.Errorf("failed to attach rejection: %w", err)
	}

	d.logger.Warn("Wallet rejected calls",
		zap.String("kind", string(task.Kind)),
		zap.String("ref_id", task.RefID),
		zap.Int("code", rpcErr.Code),
		zap.String("message", rpcErr.Message))
	return d.record(ctx, task.Kind, handle, outcome.Failed(d.clock.Now(), rpcErr.Message))
}

func (d *Dispatcher) recordTransportFailure(task Task, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.consecutiveFailures++
	d.lastFailureTime = d.clock.Now()
	d.logger.Warn("Wallet unavailable, incrementing failure counter",
		zap.Error(err),
		zap.String("ref_id", task.RefID),
		zap.Int("failure_count", d.consecutiveFailures))

	if d.consecutiveFailures >= d.cfg.FailureThreshold && !d.circuitOpen {
		d.logger.Warn("Opening circuit breaker due to consecutive failures",
			zap.Int("failure_count", d.consecutiveFailures),
			zap.Int("threshold", d.cfg.FailureThreshold))
		d.circuitOpen = true
	}

	d.pendingTasks = append(d.pendingTasks, task)
}

func (d *Dispatcher) attach(ctx context.Context, task Task, handle outcome.Handle) error {
	switch task.Kind {
	case KindSessionActivity:
		return d.activities.AttachHandle(ctx, task.RefID, handle)
	case KindProposalReceipt:
		return d.proposals.AttachHandle(ctx, task.RefID, handle)
	}
	return fmt.Errorf("unknown task kind %q", task.Kind)
}

func (d *Dispatcher) record(ctx context.Context, kind TaskKind, handle outcome.Handle, result outcome.Outcome) error {
	var err error
	switch kind {
	case KindSessionActivity:
		_, err = d.activities.RecordOutcome(ctx, handle, result)
	case KindProposalReceipt:
		_, err = d.proposals.RecordOutcome(ctx, handle, result)
	default:
		err = fmt.Errorf("unknown task kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to record outcome of %s: %w", handle, err)
	}
	return nil
}

// monitorWalletHealth probes the wallet while the circuit is open and
// requeues parked tasks once it answers.
func (d *Dispatcher) monitorWalletHealth() {
	ticker := time.NewTicker(d.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.probe()
		}
	}
}

// probe closes the circuit if the reset timeout has passed and the wallet
// responds. It reports whether the circuit was closed.
func (d *Dispatcher) probe() bool {
	d.mu.Lock()
	if !d.circuitOpen || d.clock.Now().Sub(d.lastFailureTime) < d.cfg.ResetTimeout {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(d.ctx, 5*time.Second)
	_, err := d.wallet.CurrentAccount(ctx)
	cancel()
	if err != nil {
		d.mu.Lock()
		d.lastFailureTime = d.clock.Now()
		d.mu.Unlock()
		d.logger.Warn("Wallet still unavailable", zap.Error(err))
		return false
	}

	d.mu.Lock()
	if !d.circuitOpen {
		d.mu.Unlock()
		return false
	}
	d.logger.Info("Wallet is available, resetting circuit breaker")
	d.circuitOpen = false
	d.consecutiveFailures = 0
	pending := d.pendingTasks
	d.pendingTasks = make([]Task, 0)
	d.mu.Unlock()

	for _, task := range pending {
		d.logger.Info("Requeuing parked task after circuit breaker reset",
			zap.String("ref_id", task.RefID))
		if err := d.Enqueue(task); err != nil {
			d.logger.Error("Failed to requeue parked task",
				zap.Error(err),
				zap.String("ref_id", task.RefID))
		}
	}
	return true
}
