package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"propertychat/internal/model"

	"github.com/rs/zerolog/log"
)

// ConversationStore persists conversation state under two independent keys,
// one for the message log and one for the accumulated preferences
type ConversationStore struct {
	kv KVStore
}

// NewConversationStore creates the persistence adapter
func NewConversationStore(kv KVStore) *ConversationStore {
	return &ConversationStore{kv: kv}
}

func messagesKey(id string) string    { return "chat:" + id + ":messages" }
func preferencesKey(id string) string { return "chat:" + id + ":preferences" }

// Load reads a conversation. Missing or unparseable keys are treated as
// absent; ErrNotFound is returned only when neither key holds usable data.
// Other errors come from the backend itself.
func (s *ConversationStore) Load(ctx context.Context, id string) (*model.ConversationState, error) {
	state := &model.ConversationState{ID: id}
	found := false

	raw, err := s.kv.Get(ctx, messagesKey(id))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load messages: %w", err)
	default:
		var messages []model.Message
		if err := json.Unmarshal(raw, &messages); err != nil {
			log.Warn().Err(err).Str("conversation_id", id).Msg("discarding corrupt message log")
		} else {
			state.Messages = messages
			found = true
		}
	}

	raw, err = s.kv.Get(ctx, preferencesKey(id))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	default:
		var prefs model.Preferences
		if err := json.Unmarshal(raw, &prefs); err != nil || !validPreferences(prefs) {
			log.Warn().Err(err).Str("conversation_id", id).Msg("discarding corrupt preferences")
		} else {
			state.Preferences = prefs
			found = true
		}
	}

	if !found {
		return nil, ErrNotFound
	}
	for _, m := range state.Messages {
		if m.Nudge {
			state.NudgeSent = true
			break
		}
	}
	return state, nil
}

// Save writes both keys
func (s *ConversationStore) Save(ctx context.Context, state *model.ConversationState) error {
	messages := state.Messages
	if messages == nil {
		messages = []model.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	if err := s.kv.Set(ctx, messagesKey(state.ID), raw); err != nil {
		return err
	}

	raw, err = json.Marshal(state.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return s.kv.Set(ctx, preferencesKey(state.ID), raw)
}

// Delete removes both keys
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, messagesKey(id)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, preferencesKey(id))
}

func validPreferences(p model.Preferences) bool {
	if p.Type != nil && !p.Type.Valid() {
		return false
	}
	if p.Bedrooms != nil && *p.Bedrooms < 0 {
		return false
	}
	if p.Budget != nil && *p.Budget < 0 {
		return false
	}
	return true
}
