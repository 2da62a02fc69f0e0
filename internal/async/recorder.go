package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

var (
	ErrQueueFull   = errors.New("history queue full")
	ErrQueueClosed = errors.New("history queue closed")
)

// Saver persists one extraction.
type Saver interface {
	Save(ctx context.Context, e *entity.Extraction) error
}

// Recorder writes extractions to history off the request path.
type Recorder struct {
	saver   Saver
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan *entity.Extraction
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Recorder)

func WithWorkers(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.ch = make(chan *entity.Extraction, n)
		}
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRecorder(saver Saver, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		saver:   saver,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Second,
		ch:      make(chan *entity.Extraction, 128),
	}
	for _, o := range opts {
		o(r)
	}
	r.start()
	return r
}

func (r *Recorder) start() {
	r.once.Do(func() {
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go func(workerID int) {
				defer r.wg.Done()
				r.logger.Debug("history worker started", "worker_id", workerID)

				for e := range r.ch {
					ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
					err := r.saver.Save(ctx, e)
					cancel()

					if err != nil {
						r.logger.Error("history.save.failed", "worker_id", workerID, "id", e.ID, "error", err)
					} else {
						r.logger.Debug("history.save.ok", "worker_id", workerID, "id", e.ID)
					}
				}

				r.logger.Debug("history worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue never blocks: a full queue drops the extraction.
func (r *Recorder) Enqueue(e *entity.Extraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Warn("history.enqueue.closed", "id", e.ID)
		return ErrQueueClosed
	}
	select {
	case r.ch <- e:
		return nil
	default:
		r.logger.Warn("history.enqueue.dropped", "id", e.ID, "queue_cap", cap(r.ch))
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued saves to finish or ctx to end.
func (r *Recorder) Shutdown(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); r.wg.Wait() }()

	select {
	case <-ctx.Done():
		r.logger.Warn("history shutdown interrupted by context")
	case <-done:
		r.logger.Info("history queue drained")
	}
}
