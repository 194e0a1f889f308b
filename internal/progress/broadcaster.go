package progress

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/codecrafters-dev/platform/pkg/http/ws"
)

// Sender delivers a message to one user's socket.
type Sender interface {
	SendToUser(userID uuid.UUID, msg ws.Message) error
}

// Broadcaster listens for submission updates on Redis and forwards each one
// to the submitting user's websocket.
type Broadcaster struct {
	redis   redis.UniversalClient
	hub     Sender
	channel string
	logger  zerolog.Logger
}

func NewBroadcaster(client redis.UniversalClient, hub Sender, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		redis:   client,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "progress_broadcaster").Logger(),
	}
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var evt ws.SubmissionUpdatePayload
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode submission update payload")
		return
	}
	userID, err := uuid.Parse(evt.UserID)
	if err != nil {
		b.logger.Warn().Err(err).Msg("submission update without a valid user")
		return
	}

	msg, err := ws.NewMessage(ws.TypeSubmissionUpdate, evt)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal submission WS payload")
		return
	}
	if err := b.hub.SendToUser(userID, msg); err != nil {
		if errors.Is(err, ws.ErrConnectionNotFound) {
			return
		}
		b.logger.Warn().Err(err).Str("user_id", evt.UserID).Msg("failed to forward submission update")
	}
}
