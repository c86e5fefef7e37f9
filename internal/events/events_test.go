package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalStampsOccurredAt(t *testing.T) {
	payload, err := Event{
		Kind:       KindManagerSet,
		Resource:   "project",
		ResourceID: "d6f7a910-7a39-4f2e-9a66-1c6f1f6a0001",
		ActorID:    7,
	}.Marshal()
	require.NoError(t, err)

	decoded, err := Unmarshal(payload)
	require.NoError(t, err)
	assert.Equal(t, KindManagerSet, decoded.Kind)
	assert.Equal(t, int64(7), decoded.ActorID)
	assert.WithinDuration(t, time.Now(), decoded.OccurredAt, 5*time.Second)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("{"))
	assert.Error(t, err)
}

func TestKindValidity(t *testing.T) {
	for _, k := range []Kind{KindCreated, KindUpdated, KindDeleted, KindManagerSet, KindManagerUnset, KindActivated, KindDeactivated} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, Kind("exploded").Valid())
}
