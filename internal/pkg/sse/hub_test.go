package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicAndWildcard(t *testing.T) {
	h := NewHub()

	empCh, empCleanup := h.Subscribe("emp-1")
	defer empCleanup()
	allCh, allCleanup := h.Subscribe(TopicAll)
	defer allCleanup()
	otherCh, otherCleanup := h.Subscribe("emp-2")
	defer otherCleanup()

	h.Publish("emp-1", Event{Event: "attendance_check_in", Data: "payload"})

	require.Len(t, empCh, 1)
	require.Len(t, allCh, 1)
	assert.Len(t, otherCh, 0)

	ev := <-empCh
	assert.Equal(t, "emp-1", ev.Topic)
	assert.Equal(t, "attendance_check_in", ev.Event)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	h := NewHub()

	_, cleanup := h.Subscribe("emp-1")
	assert.Equal(t, 1, h.SubscriberCount("emp-1"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, h.SubscriberCount("emp-1"))

	// Publishing without subscribers must not block
	h.Publish("emp-1", Event{Event: "noop"})
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("emp-1")
	defer cleanup()

	for i := 0; i < 25; i++ {
		h.Publish("emp-1", Event{Event: "flood"})
	}

	assert.Equal(t, cap(ch), len(ch))
}
