package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NoWebhookIsNoOp(t *testing.T) {
	n := NewNotifier("", "#alerts")
	require.NoError(t, n.Halted("ETHUSDT", "reject_streak", "5 consecutive rejects"))
	require.NoError(t, n.GuardTripped("ETHUSDT", "book_stale"))
	require.NoError(t, n.ProfitReport("ETHUSDT", 12.5, 0.3))
}

func TestNotifier_ZeroValueHasNoChannel(t *testing.T) {
	n := &Notifier{}
	assert.Equal(t, "", n.channel)
}
