package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/scanboard/internal/summary"
)

// Kind identifies what a [Result] carries.
type Kind int

const (
	// KindCountries results carry the refreshed country list.
	KindCountries Kind = iota + 1

	// KindSummary results carry one country's summary.
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindCountries:
		return "countries"
	case KindSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Result is the outcome of one source call.
type Result struct {
	Kind Kind

	// Countries is set for KindCountries results.
	Countries []string

	// Country and Summary are set for KindSummary results.
	Country string
	Summary summary.Summary

	// Latency is the duration of the source call.
	Latency time.Duration

	// RefreshedAt is when the call completed.
	RefreshedAt time.Time

	// Err is the error returned by the source, or a recovered panic.
	Err error
}

// Scheduler periodically refreshes the country list and every country's
// summary from a [summary.Source].
//
// Each cycle first fetches the country list, then fetches summaries through
// a worker pool bounded by maxConcurrency. When the country list fails, the
// last good list is used. A cycle is bounded by the refresh interval.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	source         summary.Source
	interval       time.Duration
	maxConcurrency int
	results        chan Result
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	// last good country list, only touched by the refresh loop
	countries []string
}

// NewScheduler creates a [Scheduler]. maxConcurrency below 1 is treated
// as 1.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop]. Results are available via [Scheduler.Results].
func NewScheduler(source summary.Source, interval time.Duration, maxConcurrency int, logger *slog.Logger) *Scheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Scheduler{
		source:         source,
		interval:       interval,
		maxConcurrency: maxConcurrency,
		results:        make(chan Result, 64),
		logger:         logger,
	}
}

// Results returns the channel of refresh results. It is closed when the
// scheduler stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start refreshes immediately and then every interval in a background
// goroutine, until [Scheduler.Stop] is called or ctx is cancelled.
//
// If ctx is nil, context.Background() is used. Start is idempotent; if Stop
// was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	refreshCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		s.refresh(refreshCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				s.refresh(refreshCtx)
			}
		}
	}()
}

// Stop cancels the refresh loop, waits for in-flight calls, and closes the
// results channel.
//
// Stop is idempotent. Calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// refresh runs one cycle.
func (s *Scheduler) refresh(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	var codes []string
	start := time.Now()
	err := s.safeCall("countries", func() error {
		var err error
		codes, err = s.source.Countries(cycleCtx)
		return err
	})

	if !s.emit(ctx, Result{
		Kind:        KindCountries,
		Countries:   codes,
		Latency:     time.Since(start),
		RefreshedAt: time.Now(),
		Err:         err,
	}) {
		return
	}

	if err != nil {
		s.logger.Warn("country list refresh failed, using last good list",
			"error", err,
			"countries", len(s.countries),
		)
		codes = s.countries
	} else {
		s.countries = codes
	}

	if len(codes) == 0 {
		return
	}
	s.refreshSummaries(cycleCtx, ctx, codes)
}

// refreshSummaries fetches summaries concurrently, respecting maxConcurrency.
// Calls use cycleCtx; result delivery only stops when the scheduler does.
func (s *Scheduler) refreshSummaries(cycleCtx, ctx context.Context, codes []string) {
	jobs := make(chan string, len(codes))

	var wg sync.WaitGroup
	for i := 0; i < s.maxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				if !s.emit(ctx, s.refreshCountry(cycleCtx, code)) {
					return
				}
			}
		}()
	}

	for _, code := range codes {
		select {
		case jobs <- code:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)

	wg.Wait()
}

func (s *Scheduler) refreshCountry(ctx context.Context, code string) Result {
	var sum summary.Summary
	start := time.Now()
	err := s.safeCall("summary", func() error {
		var err error
		sum, err = s.source.Summary(ctx, code)
		return err
	})

	return Result{
		Kind:        KindSummary,
		Country:     summary.NormalizeCountry(code),
		Summary:     sum,
		Latency:     time.Since(start),
		RefreshedAt: time.Now(),
		Err:         err,
	}
}

// emit delivers a result unless ctx is done first.
func (s *Scheduler) emit(ctx context.Context, r Result) bool {
	select {
	case s.results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// safeCall runs fn with panic recovery. A panic is logged with its stack
// trace and a correlation ID, and returned as an error carrying the ID.
func (s *Scheduler) safeCall(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			s.logger.Error("source panic",
				"op", op,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			err = fmt.Errorf("source %s panic (correlation_id: %s)", op, correlationID)
		}
	}()
	return fn()
}
