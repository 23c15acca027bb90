package service

import (
	"sync"

	"propertychat/internal/model"

	"github.com/rs/zerolog/log"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind
const subscriberBuffer = 32

// Broker fans delivered messages out to live subscribers of a conversation
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan model.Message]struct{}
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan model.Message]struct{})}
}

// Subscribe registers a subscriber; call the returned func to unsubscribe
func (b *Broker) Subscribe(conversationID string) (<-chan model.Message, func()) {
	ch := make(chan model.Message, subscriberBuffer)

	b.mu.Lock()
	if b.subs[conversationID] == nil {
		b.subs[conversationID] = make(map[chan model.Message]struct{})
	}
	b.subs[conversationID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[conversationID], ch)
			if len(b.subs[conversationID]) == 0 {
				delete(b.subs, conversationID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers msg to every subscriber without blocking
func (b *Broker) Publish(conversationID string, msg model.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[conversationID] {
		select {
		case ch <- msg:
		default:
			log.Warn().Str("conversation_id", conversationID).Str("message_id", msg.ID).Msg("dropping message for slow subscriber")
		}
	}
}
