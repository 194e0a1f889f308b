package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/submission"
	ws "github.com/codecrafters-dev/platform/pkg/http/ws"
)

// DefaultChannel carries submission transitions between API instances.
const DefaultChannel = "submissions:progress"

const publishTimeout = 2 * time.Second

// Publisher fans submission transitions out over Redis Pub/Sub.
type Publisher struct {
	redis   redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

func NewPublisher(client redis.UniversalClient, channel string, logger zerolog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		redis:   client,
		channel: channel,
		logger:  logger.With().Str("component", "progress_publisher").Logger(),
	}
}

// Observer returns a submission.Observer that publishes for userID.
func (p *Publisher) Observer(userID uuid.UUID) submission.Observer {
	return func(t submission.Transition) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, userID, t); err != nil {
			p.logger.Warn().Err(err).Str("attempt_id", t.AttemptID.String()).Msg("failed to publish submission update")
		}
	}
}

// Publish sends one transition.
func (p *Publisher) Publish(ctx context.Context, userID uuid.UUID, t submission.Transition) error {
	data, err := json.Marshal(payloadOf(userID, t))
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, p.channel, data).Err()
}

func payloadOf(userID uuid.UUID, t submission.Transition) ws.SubmissionUpdatePayload {
	evt := ws.SubmissionUpdatePayload{
		UserID:    userID.String(),
		AttemptID: t.AttemptID.String(),
		From:      string(t.From),
		To:        string(t.To),
		At:        t.At,
	}
	if t.Err != nil {
		evt.Error = t.Err.Error()
	}
	return evt
}
