package testutils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/logging"
)

func TestRecordingLoggerSharesEntries(t *testing.T) {
	logger := NewRecordingLogger()
	child := logger.WithComponent("form").With("form_id", "abc")

	child.Error(context.Background(), errors.New("boom"), "failed", "attempt", 1)
	logger.Info(context.Background(), "hello")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, logging.LevelError, entries[0].Level)
	assert.Equal(t, "form", entries[0].Component)
	assert.Equal(t, "abc", entries[0].Fields["form_id"])
	assert.Equal(t, 1, entries[0].Fields["attempt"])
	assert.Len(t, logger.Errors(), 1)
}

func TestFakeCreator(t *testing.T) {
	creator := NewFailingCreator("rejected")
	err := creator.CreateContact(context.Background(), contact.Record{UserID: "u"})
	assert.EqualError(t, err, "rejected")
	assert.Equal(t, 1, creator.Calls())
	assert.Equal(t, "u", creator.Records()[0].UserID)
}

func TestGatedCreatorHonoursContext(t *testing.T) {
	creator := NewGatedCreator()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := creator.CreateContact(ctx, contact.Record{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, creator.Started, 1)
}

func TestFakeNavigator(t *testing.T) {
	nav := &FakeNavigator{}
	require.NoError(t, nav.Navigate(context.Background(), "/contacts"))
	assert.Equal(t, []string{"/contacts"}, nav.Paths())
}
