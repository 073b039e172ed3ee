// Package jobs runs amortization calculations on a bounded pool of background
// workers.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"go.uber.org/zap"
)

var (
	// ErrRunnerClosed is returned by Submit after Close.
	ErrRunnerClosed = errors.New("job runner is closed")
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("job queue is full")
	// ErrJobNotFound is returned for IDs that were never submitted, were
	// discarded or finished longer ago than the retention period.
	ErrJobNotFound = errors.New("job not found")
)

// State is the lifecycle position of a job.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Request describes one calculation. An empty Arithmetic selects the
// runner's default calculator. Currency is carried through for display.
type Request struct {
	Terms      amortization.LoanTerms
	Arithmetic amortization.Arithmetic
	Currency   string
}

// Job is a snapshot of one submitted calculation.
type Job struct {
	ID          uuid.UUID
	State       State
	Terms       amortization.LoanTerms
	Arithmetic  amortization.Arithmetic
	Currency    string
	Result      *amortization.Result
	Err         error
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// Options sizes a Runner. Non-positive values select defaults.
type Options struct {
	Workers   int
	QueueSize int
	// Retention is how long a finished job stays queryable.
	Retention time.Duration
}

type entry struct {
	job  Job
	done chan struct{}
}

// Runner owns the worker goroutines and the job table.
type Runner struct {
	logger      *zap.Logger
	calc        *amortization.Calculator
	calculators map[amortization.Arithmetic]*amortization.Calculator
	queue       chan *entry
	retention   time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	jobs   map[uuid.UUID]*entry
	closed bool

	wg sync.WaitGroup
}

// NewRunner starts opts.Workers goroutines that take jobs from a queue holding
// at most opts.QueueSize waiting jobs. calc serves requests that name no
// arithmetic.
func NewRunner(logger *zap.Logger, calc *amortization.Calculator, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = amortization.NewCalculator(logger, amortization.ArithmeticDecimal)
	}
	if opts.Workers < 1 {
		opts.Workers = constants.DefaultJobWorkers
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = constants.DefaultJobQueueSize
	}
	if opts.Retention <= 0 {
		opts.Retention = constants.DefaultJobRetention
	}

	r := &Runner{
		logger:      logger,
		calc:        calc,
		calculators: make(map[amortization.Arithmetic]*amortization.Calculator),
		queue:       make(chan *entry, opts.QueueSize),
		retention:   opts.Retention,
		now:         time.Now,
		jobs:        make(map[uuid.UUID]*entry),
	}
	for _, a := range amortization.KnownArithmetics {
		r.calculators[a] = amortization.NewCalculator(logger, a)
	}
	r.calculators[calc.Arithmetic()] = calc

	r.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go r.work()
	}
	return r
}

// Submit queues a calculation and returns its ID without waiting for it.
func (r *Runner) Submit(req Request) (uuid.UUID, error) {
	arithmetic := r.calc.Arithmetic()
	if req.Arithmetic != "" {
		parsed, err := amortization.ParseArithmetic(string(req.Arithmetic))
		if err != nil {
			return uuid.Nil, err
		}
		arithmetic = parsed
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return uuid.Nil, ErrRunnerClosed
	}
	r.evictExpired()

	e := &entry{
		job: Job{
			ID:          uuid.New(),
			State:       StatePending,
			Terms:       req.Terms,
			Arithmetic:  arithmetic,
			Currency:    req.Currency,
			SubmittedAt: r.now(),
		},
		done: make(chan struct{}),
	}
	select {
	case r.queue <- e:
	default:
		return uuid.Nil, ErrQueueFull
	}
	r.jobs[e.job.ID] = e

	r.logger.Debug("submitted calculation job",
		zap.String("op", "jobs.Submit"),
		zap.String("id", e.job.ID.String()),
	)
	return e.job.ID, nil
}

// Status returns a snapshot of the job.
func (r *Runner) Status(id uuid.UUID) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.lookup(id)
	if !ok {
		return Job{}, false
	}
	return e.job, true
}

// Wait blocks until the job finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id uuid.UUID) (*amortization.Result, error) {
	r.mu.RLock()
	e, ok := r.lookup(id)
	r.mu.RUnlock()
	if !ok {
		return nil, ErrJobNotFound
	}

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.job.Result, e.job.Err
}

// Discard forgets a job. A job that is still running finishes, but its
// result is dropped.
func (r *Runner) Discard(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(id); !ok {
		return ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

// Len reports how many jobs are held, including finished jobs that have not
// been evicted yet.
func (r *Runner) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// lookup hides jobs past their retention. Callers hold r.mu.
func (r *Runner) lookup(id uuid.UUID) (*entry, bool) {
	e, ok := r.jobs[id]
	if !ok || r.expired(e) {
		return nil, false
	}
	return e, true
}

func (r *Runner) expired(e *entry) bool {
	finished := e.job.FinishedAt
	return !finished.IsZero() && r.now().Sub(finished) > r.retention
}

// evictExpired drops finished jobs past their retention. Callers hold r.mu
// for writing.
func (r *Runner) evictExpired() {
	evicted := 0
	for id, e := range r.jobs {
		if r.expired(e) {
			delete(r.jobs, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted finished calculation jobs",
			zap.String("op", "jobs.evictExpired"),
			zap.Int("count", evicted),
		)
	}
}

// Close stops accepting jobs, lets the workers drain the queue and waits for
// them to exit.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) work() {
	defer r.wg.Done()
	for e := range r.queue {
		r.mu.Lock()
		e.job.State = StateRunning
		terms := e.job.Terms
		calc := r.calculators[e.job.Arithmetic]
		r.mu.Unlock()

		result, err := calc.Calculate(terms)

		r.mu.Lock()
		e.job.Result = result
		e.job.Err = err
		e.job.FinishedAt = r.now()
		if err != nil {
			e.job.State = StateFailed
		} else {
			e.job.State = StateDone
		}
		id := e.job.ID
		r.mu.Unlock()
		close(e.done)

		if err != nil {
			r.logger.Warn("calculation job failed",
				zap.String("op", "jobs.work"),
				zap.String("id", id.String()),
				zap.Error(err),
			)
		} else {
			r.logger.Debug("calculation job finished",
				zap.String("op", "jobs.work"),
				zap.String("id", id.String()),
			)
		}
	}
}
