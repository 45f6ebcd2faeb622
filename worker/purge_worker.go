package worker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
	"hackbot/utils"
)

// PurgeBatchSize is the most messages Discord lets us list or bulk delete at once.
const PurgeBatchSize = 100

// ErrQueueFull is returned by Enqueue when the worker is saturated.
var ErrQueueFull = errors.New("purge queue is full")

// PurgeJob asks for every message in a channel to be deleted.
type PurgeJob struct {
	ChannelID   string
	ChannelName string
	RequestedBy string
}

// PurgeWorker clears channels one at a time, in batches, off the command
// path so a long history does not hold up the interaction.
type PurgeWorker struct {
	Purger platform.MessagePurger
	Logger *logrus.Entry
	Audit  func(models.AuditEvent)

	// Pause between batches, to stay clear of rate limits.
	Pause time.Duration

	jobs chan PurgeJob
}

func NewPurgeWorker(purger platform.MessagePurger, logger *logrus.Entry, queue int) *PurgeWorker {
	return &PurgeWorker{
		Purger: purger,
		Logger: logger,
		Pause:  time.Second,
		jobs:   make(chan PurgeJob, queue),
	}
}

// Enqueue schedules a job without blocking.
func (pw *PurgeWorker) Enqueue(job PurgeJob) error {
	select {
	case pw.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (pw *PurgeWorker) Start(ctx context.Context) {
	pw.Logger.Info("Purge worker started")

	for {
		select {
		case <-ctx.Done():
			pw.Logger.Info("Purge worker shutting down...")
			return
		case job := <-pw.jobs:
			pw.process(ctx, job)
		}
	}
}

func (pw *PurgeWorker) process(ctx context.Context, job PurgeJob) {
	log := pw.Logger.WithFields(logrus.Fields{
		"channel":      job.ChannelName,
		"channel_id":   job.ChannelID,
		"requested_by": job.RequestedBy,
	})

	total, err := pw.Purge(ctx, job.ChannelID)
	if err != nil {
		utils.LogError("purge_failed", err, map[string]interface{}{
			"channel_id": job.ChannelID,
			"deleted":    total,
		})
		return
	}

	log.WithField("deleted", total).Info("Channel purged")

	if pw.Audit != nil {
		pw.Audit(models.AuditEvent{
			Kind:   models.AuditChannelPurged,
			Actor:  job.RequestedBy,
			Detail: job.ChannelName,
			At:     time.Now().UTC(),
		})
	}
}

// Purge deletes batches until the channel is empty and returns the count.
func (pw *PurgeWorker) Purge(ctx context.Context, channelID string) (int, error) {
	total := 0
	for {
		n, err := pw.Purger.PurgeBatch(ctx, channelID, PurgeBatchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < PurgeBatchSize {
			return total, nil
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(pw.Pause):
		}
	}
}
