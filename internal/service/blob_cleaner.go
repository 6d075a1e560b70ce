package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/pkg/jobs"
)

const blobDeleteJob = "blob.delete"

type blobRemover interface {
	Delete(filename string) error
	RemoveDir(dir string) error
}

type cleanupRecorder interface {
	RecordCleanup(success bool)
}

// BlobCleanerConfig sizes the cleanup worker pool.
type BlobCleanerConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// BlobCleaner removes uploaded file bodies on a background queue once their
// records are gone from the catalog.
type BlobCleaner struct {
	storage blobRemover
	queue   *jobs.Queue
	metrics cleanupRecorder
	logger  *zap.Logger
}

// NewBlobCleaner wires the cleaner to its queue. Call Start before Release.
func NewBlobCleaner(storage blobRemover, cfg BlobCleanerConfig, metrics cleanupRecorder, logger *zap.Logger) *BlobCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &BlobCleaner{storage: storage, metrics: metrics, logger: logger}
	c.queue = jobs.NewQueue("blob-cleanup", c.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnGiveUp: func(job jobs.Job, err error) {
			if c.metrics != nil {
				c.metrics.RecordCleanup(false)
			}
			c.logger.Error("uploaded body left on disk", zap.String("file_id", job.ID), zap.String("path", job.Payload), zap.Error(err))
		},
	})
	return c
}

// Start launches the workers.
func (c *BlobCleaner) Start(ctx context.Context) {
	c.queue.Start(ctx)
}

// Stop finishes queued removals and waits for the workers.
func (c *BlobCleaner) Stop() {
	c.queue.Stop()
}

// Release enqueues removal of the stored bodies of files. Link-only files are skipped.
func (c *BlobCleaner) Release(files ...models.StudyFile) {
	for _, f := range files {
		if f.BlobPath == "" {
			continue
		}
		job := jobs.Job{ID: f.ID, Kind: blobDeleteJob, Payload: f.BlobPath}
		if err := c.queue.Enqueue(job); err != nil {
			c.logger.Warn("failed to enqueue blob cleanup", zap.String("file_id", f.ID), zap.Error(err))
		}
	}
}

func (c *BlobCleaner) handle(_ context.Context, job jobs.Job) error {
	if job.Kind != blobDeleteJob {
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err := c.remove(job.Payload); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordCleanup(true)
	}
	c.logger.Debug("uploaded body removed", zap.String("file_id", job.ID), zap.String("path", job.Payload))
	return nil
}

func (c *BlobCleaner) remove(relPath string) error {
	if err := c.storage.Delete(relPath); err != nil {
		return err
	}
	if dir := path.Dir(relPath); dir != "." && dir != "/" {
		return c.storage.RemoveDir(dir)
	}
	return nil
}
