package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelNaming(t *testing.T) {
	assert.Equal(t, "presentation:user:42", Channel("42"))
}

func TestMemoryNotifierRecordsPublishes(t *testing.T) {
	n := NewMemoryNotifier()

	require.NoError(t, n.Publish(context.Background(), "user-1", map[string]bool{"isVerified": true}))
	require.NoError(t, n.Publish(context.Background(), "user-2", "declined"))

	published := n.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "user-1", published[0].UserID)
	assert.Equal(t, "presentation:user:user-1", published[0].Channel)
	assert.Equal(t, "declined", published[1].Payload)
}

func TestMemoryNotifierFailWith(t *testing.T) {
	n := NewMemoryNotifier()
	n.FailWith(errors.New("broker down"))

	err := n.Publish(context.Background(), "user-1", nil)
	require.Error(t, err)
	assert.Empty(t, n.Published())
}
