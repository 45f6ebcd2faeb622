package controller

import (
	"context"

	"github.com/sirupsen/logrus"

	"hackbot/platform"
	"hackbot/platform/discord"
	"hackbot/worker"
)

type AdminController struct {
	messenger platform.Messenger
	purger    *worker.PurgeWorker
	messages  map[string]string
	logger    *logrus.Entry
}

func NewAdminController(messenger platform.Messenger, purger *worker.PurgeWorker, messages map[string]string, logger *logrus.Entry) *AdminController {
	return &AdminController{
		messenger: messenger,
		purger:    purger,
		messages:  messages,
		logger:    logger,
	}
}

// Ping handles /ping.
func (ac *AdminController) Ping(ctx context.Context, inv *platform.Invocation) error {
	_, err := inv.Respond(ctx, "pong")
	return err
}

// PostInfo handles /post-info: posts the static message for the topic in
// the invoking channel.
func (ac *AdminController) PostInfo(ctx context.Context, inv *platform.Invocation) error {
	topic := inv.Options.String(discord.OptionTopic)

	content, ok := ac.messages[topic]
	if !ok {
		_, err := inv.Respond(ctx, "Unknown topic `"+topic+"`.")
		return err
	}

	if _, err := inv.Respond(ctx, "Posting `"+topic+"`."); err != nil {
		return err
	}

	if _, err := ac.messenger.Send(ctx, inv.ChannelID, content); err != nil {
		return err
	}

	ac.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"channel":  inv.ChannelName,
		"operator": inv.Invoker.Username,
	}).Info("Posted info message")
	return nil
}

// Purge handles /purge by queueing the invoking channel for clearing.
func (ac *AdminController) Purge(ctx context.Context, inv *platform.Invocation) error {
	err := ac.purger.Enqueue(worker.PurgeJob{
		ChannelID:   inv.ChannelID,
		ChannelName: inv.ChannelName,
		RequestedBy: inv.Invoker.Username,
	})
	if err == worker.ErrQueueFull {
		_, err = inv.Respond(ctx, "Too many channels are being cleared right now; try again in a minute.")
		return err
	}
	if err != nil {
		return err
	}

	_, err = inv.Respond(ctx, "Clearing this channel…")
	return err
}
