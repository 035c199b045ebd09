package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull     = errors.New("audio queue is full")
	ErrWorkerStopped = errors.New("audio worker is stopped")
)

// StatusUpdater records the generated audio location on the post.
type StatusUpdater interface {
	UpdateTtsStatus(ctx context.Context, id int64, audioURL string) (bool, error)
}

type Job struct {
	PostID       int64
	Text         string
	Instructions string
}

type WorkerConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Attempts  int
	Backoff   time.Duration
}

// Worker runs generation jobs off the request path and reports results
// through the StatusUpdater.
type Worker struct {
	gen     Generator
	updater StatusUpdater
	cfg     WorkerConfig
	log     *zap.SugaredLogger

	jobs    chan Job
	mu      sync.RWMutex
	pending map[int64]struct{}
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWorker(gen Generator, updater StatusUpdater, cfg WorkerConfig, log *zap.SugaredLogger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Worker{
		gen:     gen,
		updater: updater,
		cfg:     cfg,
		log:     log,
		jobs:    make(chan Job, cfg.QueueSize),
		pending: map[int64]struct{}{},
	}
}

func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.loop(ctx)
	}
}

// Stop stops accepting jobs and waits for running ones to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()
	if w.cancel != nil {
		w.cancel()
	}
}

// Request queues a job. A post that is already queued is not queued twice.
func (w *Worker) Request(postID int64, text, instructions string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return ErrWorkerStopped
	}
	if _, ok := w.pending[postID]; ok {
		return nil
	}

	select {
	case w.jobs <- Job{PostID: postID, Text: text, Instructions: instructions}:
		w.pending[postID] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	for job := range w.jobs {
		w.process(ctx, job)

		w.mu.Lock()
		delete(w.pending, job.PostID)
		w.mu.Unlock()
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	var (
		url string
		err error
	)
	backoff := w.cfg.Backoff
	for attempt := 1; attempt <= w.cfg.Attempts; attempt++ {
		url, err = w.gen.Generate(ctx, job.PostID, job.Text, job.Instructions)
		if err == nil {
			break
		}
		w.log.Warnw("audio generation attempt failed", "post_id", job.PostID, "attempt", attempt, "error", err)
		if attempt == w.cfg.Attempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Errorw("audio generation abandoned", "post_id", job.PostID, "error", ctx.Err())
			return
		case <-timer.C:
		}
		backoff *= 2
	}
	if err != nil {
		w.log.Errorw("audio generation failed", "post_id", job.PostID, "error", err)
		return
	}

	updated, err := w.updater.UpdateTtsStatus(ctx, job.PostID, url)
	if err != nil {
		w.log.Errorw("audio status update failed", "post_id", job.PostID, "error", err)
		return
	}
	if !updated {
		w.log.Infow("audio status unchanged", "post_id", job.PostID)
	}
}
