package inbox

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/contact"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func message(subject string, at time.Time) contact.Message {
	return contact.Message{
		Fields: contact.Fields{Name: "A", Email: "a@b.com", Subject: subject, Message: "M"},
		Origin: "abc123",
		SentAt: at,
	}
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Save(ctx, message("first", base))
	require.NoError(t, err)
	_, err = s.Save(ctx, message("second", base.Add(time.Minute)))
	require.NoError(t, err)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Subject)
	assert.Equal(t, "first", entries[1].Subject)
	assert.Equal(t, StatusPending, entries[0].Status)
	assert.Equal(t, "abc123", entries[0].Origin)
	assert.True(t, entries[1].ReceivedAt.Equal(base))

	entries, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMarkDelivered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Save(ctx, message("ok", time.Now()))
	require.NoError(t, err)
	bad, err := s.Save(ctx, message("bad", time.Now().Add(time.Second)))
	require.NoError(t, err)

	require.NoError(t, s.MarkDelivered(ctx, ok, nil))
	require.NoError(t, s.MarkDelivered(ctx, bad, errors.New("smtp down")))
	assert.Error(t, s.MarkDelivered(ctx, "missing", nil))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "smtp down", entries[0].Error)
	assert.Equal(t, StatusDelivered, entries[1].Status)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Save(ctx, message("old", now.AddDate(-1, -1, 0)))
	require.NoError(t, err)
	_, err = s.Save(ctx, message("new", now.AddDate(0, -1, 0)))
	require.NoError(t, err)

	n, err := s.Prune(ctx, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Subject)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "inbox.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), message("kept", time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorder(t *testing.T) {
	s := openTestStore(t)
	var forwarded []contact.Message
	next := contact.SenderFunc(func(ctx context.Context, msg contact.Message) error {
		forwarded = append(forwarded, msg)
		if msg.Subject == "fail" {
			return errors.New("rejected")
		}
		return nil
	})
	r := &Recorder{Store: s, Next: next}
	ctx := context.Background()

	require.NoError(t, r.Send(ctx, message("hello", time.Now())))
	assert.EqualError(t, r.Send(ctx, message("fail", time.Now().Add(time.Second))), "rejected")
	assert.Len(t, forwarded, 2)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, StatusDelivered, entries[1].Status)
}

func TestRecorderDeliversWhenArchiveFails(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	delivered := false
	r := &Recorder{Store: s, Next: contact.SenderFunc(func(context.Context, contact.Message) error {
		delivered = true
		return nil
	})}
	assert.NoError(t, r.Send(context.Background(), message("x", time.Now())))
	assert.True(t, delivered)
}

func TestHasher(t *testing.T) {
	h := NewHasher("pepper")
	a := h.Hash("203.0.113.7")
	assert.Len(t, a, 16)
	assert.Equal(t, a, h.Hash("203.0.113.7"))
	assert.NotEqual(t, a, h.Hash("203.0.113.8"))
	assert.NotEqual(t, a, NewHasher("salt").Hash("203.0.113.7"))
	assert.NotContains(t, a, "203")
}
