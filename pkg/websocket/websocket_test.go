package websocketPkg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRequestsResolveDeliversToWaiter(t *testing.T) {
	pending := newPendingRequests()

	ch := pending.add("req-1")
	payload := json.RawMessage(`{"image_base64":"abc"}`)

	require.True(t, pending.resolve("req-1", payload))

	select {
	case got := <-ch:
		assert.Equal(t, payload, got)
	default:
		t.Fatal("expected payload on waiter channel")
	}
}

func TestPendingRequestsResolveUnknownID(t *testing.T) {
	pending := newPendingRequests()

	assert.False(t, pending.resolve("never-registered", json.RawMessage(`{}`)))
}

func TestPendingRequestsResolveIsOneShot(t *testing.T) {
	pending := newPendingRequests()

	pending.add("req-1")
	require.True(t, pending.resolve("req-1", json.RawMessage(`{}`)))
	assert.False(t, pending.resolve("req-1", json.RawMessage(`{}`)))
}

func TestPendingRequestsDropPreventsDelivery(t *testing.T) {
	pending := newPendingRequests()

	ch := pending.add("req-1")
	pending.drop("req-1")

	assert.False(t, pending.resolve("req-1", json.RawMessage(`{}`)))

	select {
	case <-ch:
		t.Fatal("dropped request should never receive a payload")
	default:
	}
}
