package consumer

import (
	"context"

	"github.com/rs/zerolog/log"
)

type AuditStore interface {
	Append(ctx context.Context, eventType, payload string) error
}

// AuditConsumer appends an immutable log entry for every event it sees. It
// carries no logic of its own; the raw payload is stored verbatim.
type AuditConsumer struct {
	audit AuditStore
}

func NewAuditConsumer(audit AuditStore) *AuditConsumer {
	return &AuditConsumer{audit: audit}
}

// Run consumes one topic's stream until the context is cancelled, recording
// each message under the given event type.
func (c *AuditConsumer) Run(ctx context.Context, reader MessageReader, eventType string) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msgf("Error reading %s message", eventType)
			continue
		}

		if err := c.audit.Append(ctx, eventType, string(msg.Value)); err != nil {
			// Audit is a pure side effect; a failed append never blocks the stream.
			log.Error().Err(err).Msgf("Error appending %s audit entry", eventType)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Msgf("Error committing %s offset", eventType)
		}
	}
}
