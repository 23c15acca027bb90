package service

import (
	"testing"

	"propertychat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesConversationSubscribers(t *testing.T) {
	b := NewBroker()

	a1, unsubA1 := b.Subscribe("a")
	a2, unsubA2 := b.Subscribe("a")
	other, unsubOther := b.Subscribe("b")
	defer unsubA1()
	defer unsubA2()
	defer unsubOther()

	b.Publish("a", model.Message{ID: "m1"})

	require.Len(t, a1, 1)
	require.Len(t, a2, 1)
	assert.Equal(t, "m1", (<-a1).ID)
	assert.Equal(t, "m1", (<-a2).ID)
	assert.Len(t, other, 0)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()

	ch, unsubscribe := b.Subscribe("a")
	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open, "channel is closed")
	assert.NotPanics(t, func() { b.Publish("a", model.Message{ID: "m1"}) })
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()

	ch, unsubscribe := b.Subscribe("a")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish("a", model.Message{ID: "m"})
	}
	assert.Len(t, ch, subscriberBuffer)
}
