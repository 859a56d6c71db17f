package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	msgs []*kafka.Message
	end  error
}

func (s *sliceSource) Next() (*kafka.Message, error) {
	if len(s.msgs) == 0 {
		return nil, s.end
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

type recordingCommitter struct {
	committed []*kafka.Message
}

func (r *recordingCommitter) Commit(msg *kafka.Message) error {
	r.committed = append(r.committed, msg)
	return nil
}

type stubIngester struct {
	seen  []models.EntryMessage
	errs  []error
	calls int
}

func (s *stubIngester) IngestEntry(_ context.Context, msg models.EntryMessage) (models.AnalyzedEntry, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return models.AnalyzedEntry{}, err
		}
	}
	s.seen = append(s.seen, msg)
	return models.AnalyzedEntry{Entry: models.DreamEntry{ID: msg.ID}}, nil
}

func message(t *testing.T, key string, v any) *kafka.Message {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return &kafka.Message{Key: []byte(key), Value: body}
}

func TestEntryConsumerCommitsAfterIngest(t *testing.T) {
	const id = "6f1c2a7e-1b5d-4c1e-9a57-1d2f3b4c5d6e"
	source := &sliceSource{
		msgs: []*kafka.Message{
			message(t, id, models.EntryMessage{EntryInput: models.EntryInput{Content: "a flood"}}),
			{Value: []byte("{broken")},
			message(t, "", models.EntryMessage{EntryInput: models.EntryInput{Content: "a chase"}}),
		},
		end: io.EOF,
	}
	committer := &recordingCommitter{}
	ingester := &stubIngester{}

	err := NewEntryConsumer(ingester).Run(context.Background(), source, committer)
	assert.ErrorIs(t, err, io.EOF)

	require.Len(t, ingester.seen, 2)
	assert.Equal(t, id, ingester.seen[0].ID, "a uuid key becomes the entry id")
	assert.Empty(t, ingester.seen[1].ID)
	assert.Len(t, committer.committed, 3, "malformed messages are committed and skipped")
}

func TestEntryConsumerSkipsInvalidEntries(t *testing.T) {
	source := &sliceSource{
		msgs: []*kafka.Message{message(t, "", models.EntryMessage{})},
		end:  io.EOF,
	}
	committer := &recordingCommitter{}
	ingester := &stubIngester{errs: []error{journal.ErrValidation}}

	_ = NewEntryConsumer(ingester).Run(context.Background(), source, committer)
	assert.Equal(t, 1, ingester.calls)
	assert.Len(t, committer.committed, 1)
}

func TestEntryConsumerRetriesThenLeavesMessageUncommitted(t *testing.T) {
	storeDown := errors.New("store down")
	c := NewEntryConsumer(&stubIngester{errs: []error{storeDown, storeDown, storeDown}})
	c.backoff = time.Millisecond

	source := &sliceSource{msgs: []*kafka.Message{message(t, "", models.EntryMessage{EntryInput: models.EntryInput{Content: "x"}})}}
	committer := &recordingCommitter{}

	err := c.Run(context.Background(), source, committer)
	assert.ErrorIs(t, err, storeDown)
	assert.Empty(t, committer.committed)
}

func TestEntryConsumerRecoversAfterTransientFailure(t *testing.T) {
	ingester := &stubIngester{errs: []error{errors.New("timeout"), nil}}
	c := NewEntryConsumer(ingester)
	c.backoff = time.Millisecond

	source := &sliceSource{
		msgs: []*kafka.Message{message(t, "", models.EntryMessage{EntryInput: models.EntryInput{Content: "x"}})},
		end:  io.EOF,
	}
	committer := &recordingCommitter{}

	_ = c.Run(context.Background(), source, committer)
	assert.Equal(t, 2, ingester.calls)
	assert.Len(t, committer.committed, 1)
}

func TestEntryConsumerStopsQuietlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &sliceSource{end: context.Canceled}

	err := NewEntryConsumer(&stubIngester{}).Run(ctx, source, &recordingCommitter{})
	assert.NoError(t, err)
}
