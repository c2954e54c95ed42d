package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueSession(sessionID uuid.UUID)
}

type worker struct {
	sessionRepo  repositories.RankingSessionRepository
	jobs         RankingJobService
	queue        chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	logger       *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

func NewWorker(
	sessionRepo repositories.RankingSessionRepository,
	jobs RankingJobService,
	concurrency int,
	pollInterval time.Duration,
	logger *zap.Logger,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &worker{
		sessionRepo:  sessionRepo,
		jobs:         jobs,
		queue:        make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting ranking workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processSessions(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingSessions(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping ranking workers")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("ranking workers stopped")
}

// EnqueueSession implements Worker.
func (w *worker) EnqueueSession(sessionID uuid.UUID) {
	select {
	case w.queue <- sessionID:
		w.logger.Debug("session enqueued", zap.String("session_id", sessionID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue session", zap.String("session_id", sessionID.String()))
	}
}

func (w *worker) processSessions(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case sessionID := <-w.queue:
			if err := w.jobs.ProcessSession(ctx, sessionID); err != nil {
				log.Error("ranking session failed", zap.String("session_id", sessionID.String()), zap.Error(err))
			}
		}
	}
}

func (w *worker) pollPendingSessions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.sessionRepo.FindPendingSessions(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending sessions", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.logger.Info("found pending sessions", zap.Int("count", len(pending)))
			}

			for _, session := range pending {
				w.EnqueueSession(session.ID)
			}
		}
	}
}
