package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/syncpattern"
)

func TestHub_PushDoesNotBlockWithoutClients(t *testing.T) {
	h := NewHub(nil)

	h.OnBurst(framer.Burst{Sync: syncpattern.Unknown, Lock: syncpattern.NORMAL})
	h.OnSyncLoss(framer.SyncLoss{Bits: 144})

	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_CloseClearsClients(t *testing.T) {
	h := NewHub(nil)
	c := &client{id: "test", send: make(chan []byte, 1)}
	h.register(c)
	require.Equal(t, 1, h.ClientCount())

	h.Close()

	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub(nil)
	c := &client{id: "test", send: make(chan []byte, 1)}

	h.register(c)
	require.Equal(t, 1, h.ClientCount())

	h.unregister(c)
	assert.Equal(t, 0, h.ClientCount())
}

func TestBurstMessage_Marshal(t *testing.T) {
	data, err := json.Marshal(burstMessage{Type: "burst", Timeslot: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"burst"`)
}

func TestSyncLossMessage_Marshal(t *testing.T) {
	data, err := json.Marshal(syncLossMessage{Type: "sync_loss", Bits: 400})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"sync_loss"`)
}
