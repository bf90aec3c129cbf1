package sms

import (
	"context"
	"regexp"
	"testing"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated_Send(t *testing.T) {
	gw := NewSimulated(nil)

	r, err := gw.Send(context.Background(), "+15551234567", "Rain expected")
	require.NoError(t, err)
	assert.Equal(t, domain.SMSSent, r.Status)
	assert.Regexp(t, regexp.MustCompile(`^sms_\d+_[0-9a-z]+$`), r.MessageID)

	sent := gw.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Rain expected", sent[0].Body)
}

func TestSimulated_UniqueIDs(t *testing.T) {
	gw := NewSimulated(nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		r, err := gw.Send(context.Background(), "+15551234567", "Frost warning")
		require.NoError(t, err)
		assert.False(t, seen[r.MessageID], "duplicate id %s", r.MessageID)
		seen[r.MessageID] = true
	}
}

func TestSimulated_BadNumberFails(t *testing.T) {
	gw := NewSimulated(nil)
	for _, phone := range []string{"5551234567", "+0123456", "+1 555 123", ""} {
		r, err := gw.Send(context.Background(), phone, "Rain expected")
		require.NoError(t, err)
		assert.Equal(t, domain.SMSFailed, r.Status, phone)
		assert.NotEmpty(t, r.MessageID)
	}
	assert.Empty(t, gw.Sent())
}

func TestSimulated_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulated(nil).Send(ctx, "+15551234567", "Rain expected")
	assert.ErrorIs(t, err, context.Canceled)
}
