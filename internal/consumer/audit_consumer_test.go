package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type fakeAuditStore struct {
	entries []string
	err     error
}

func (f *fakeAuditStore) Append(_ context.Context, eventType, payload string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, eventType+": "+payload)
	return nil
}

func TestAuditConsumerRecordsEveryMessage(t *testing.T) {
	store := &fakeAuditStore{}
	ctx, cancel := context.WithCancel(context.Background())
	reader := &scriptedReader{
		msgs: []kafka.Message{
			{Value: []byte(`{"orderId":1}`)},
			{Value: []byte(`{"orderId":2}`)},
		},
		cancel: cancel,
	}

	NewAuditConsumer(store).Run(ctx, reader, "ORDER_STATUS_CHANGED")

	assert.Equal(t, []string{
		`ORDER_STATUS_CHANGED: {"orderId":1}`,
		`ORDER_STATUS_CHANGED: {"orderId":2}`,
	}, store.entries)
	assert.Len(t, reader.committed, 2)
}

func TestAuditConsumerCommitsDespiteAppendFailure(t *testing.T) {
	store := &fakeAuditStore{err: errors.New("table locked")}
	ctx, cancel := context.WithCancel(context.Background())
	reader := &scriptedReader{
		msgs:   []kafka.Message{{Value: []byte(`{}`)}},
		cancel: cancel,
	}

	NewAuditConsumer(store).Run(ctx, reader, "INVENTORY_UPDATE")

	assert.Len(t, reader.committed, 1, "audit failure never blocks the stream")
}
