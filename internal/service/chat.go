package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"propertychat/internal/model"
	"propertychat/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// deferredSaveTimeout bounds persistence done from timer callbacks
const deferredSaveTimeout = 5 * time.Second

// ChatConfig holds the conversation timing knobs
type ChatConfig struct {
	ReplyDelay time.Duration // zero delivers replies inline
	NudgeDelay time.Duration // zero disables the idleness nudge
}

// TurnResult is the outcome of one accepted user turn
type TurnResult struct {
	UserMessage model.Message
	Reply       *model.Message // nil while delivery is deferred
	Stage       model.Stage
	Deferred    bool
}

// session serialises the turns of one conversation. It stays in the
// active set only while a request or timer callback holds a reference.
type session struct {
	mu    sync.Mutex
	state *model.ConversationState
	refs  int
}

// ChatService runs conversations: one turn at a time per conversation,
// persisted after every change, with deferred replies and nudges. The
// store is the source of truth; sessions are loaded per operation.
type ChatService struct {
	assistant *Assistant
	store     *repository.ConversationStore
	scheduler *Scheduler
	broker    *Broker
	cfg       ChatConfig

	mu     sync.Mutex
	active map[string]*session
}

// NewChatService creates a chat service
func NewChatService(assistant *Assistant, store *repository.ConversationStore, scheduler *Scheduler, broker *Broker, cfg ChatConfig) *ChatService {
	return &ChatService{
		assistant: assistant,
		store:     store,
		scheduler: scheduler,
		broker:    broker,
		cfg:       cfg,
		active:    make(map[string]*session),
	}
}

// Create starts a new conversation seeded with the greeting
func (s *ChatService) Create(ctx context.Context) (*model.ConversationState, error) {
	id := uuid.NewString()
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	next := s.assistant.NewState(id)
	if err := s.commit(ctx, sess, next); err != nil {
		return nil, err
	}

	s.armNudge(id, sess)
	log.Info().Str("conversation_id", id).Msg("conversation created")
	return snapshot(sess.state), nil
}

// Send applies a user turn. The stale pending reply, if any, is cancelled;
// the new reply is delivered inline when ReplyDelay is zero and scheduled
// otherwise. Nothing is kept when the turn cannot be saved.
func (s *ChatService) Send(ctx context.Context, id, text string) (*TurnResult, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := snapshot(sess.state)
	reply, err := s.assistant.ApplyUserTurn(next, text)
	if err != nil {
		return nil, err
	}
	userMsg := next.Messages[len(next.Messages)-1]

	result := &TurnResult{UserMessage: userMsg, Stage: next.Preferences.Stage()}
	var delivered *model.Message
	if s.cfg.ReplyDelay <= 0 {
		msg := s.assistant.Deliver(next, reply)
		delivered = &msg
		result.Reply = &msg
	} else {
		result.Deferred = true
	}

	if err := s.commit(ctx, sess, next); err != nil {
		return nil, err
	}
	s.scheduler.Cancel(id, TaskReply)
	s.scheduler.Cancel(id, TaskNudge)

	log.Debug().
		Str("conversation_id", id).
		Str("stage", string(result.Stage)).
		Int("listings", len(reply.Listings)).
		Bool("deferred", result.Deferred).
		Msg("user turn applied")

	s.broker.Publish(id, userMsg)
	if delivered != nil {
		s.broker.Publish(id, *delivered)
	} else {
		s.scheduler.Schedule(id, TaskReply, s.cfg.ReplyDelay, func() {
			s.deliverReply(id, userMsg.ID, reply)
		})
	}
	s.armNudge(id, sess)
	return result, nil
}

// History returns the message log. Unknown conversations read as a fresh
// greeting and are not stored until the first turn.
func (s *ChatService) History(ctx context.Context, id string) (*model.ConversationState, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess.state), nil
}

// Reset clears the log and preferences, reseeds the greeting and re-arms
// the nudge. Pending deferred work for the conversation is cancelled.
func (s *ChatService) Reset(ctx context.Context, id string) (*model.ConversationState, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := snapshot(sess.state)
	s.assistant.Reset(next)
	if err := s.commit(ctx, sess, next); err != nil {
		return nil, err
	}
	s.scheduler.CancelAll(id)
	s.broker.Publish(id, sess.state.Messages[0])
	s.armNudge(id, sess)
	log.Info().Str("conversation_id", id).Msg("conversation reset")
	return snapshot(sess.state), nil
}

// Subscribe streams messages as they are appended to the conversation
func (s *ChatService) Subscribe(id string) (<-chan model.Message, func()) {
	return s.broker.Subscribe(id)
}

// PendingReply reports whether a deferred reply is waiting to be delivered
func (s *ChatService) PendingReply(id string) bool {
	return s.scheduler.Pending(id, TaskReply)
}

// Close cancels all deferred work
func (s *ChatService) Close() {
	s.scheduler.Stop()
}

// acquire returns the active session for id, loading it from the store
// when no other caller holds it. The load runs outside s.mu so a slow
// backend only delays its own conversation. Pair with release.
func (s *ChatService) acquire(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.active[id]; ok {
		sess.refs++
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[id]
	if !ok {
		sess = &session{state: state}
		s.active[id] = sess
	}
	sess.refs++
	return sess, nil
}

// release drops a reference; the last one removes the session from the
// active set
func (s *ChatService) release(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.refs--
	if sess.refs <= 0 && s.active[id] == sess {
		delete(s.active, id)
	}
}

// load reads a conversation. Unknown or unreadable conversations start
// fresh; a log lost without its preferences is reseeded with the greeting.
func (s *ChatService) load(ctx context.Context, id string) (*model.ConversationState, error) {
	state, err := s.store.Load(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.assistant.NewState(id), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	case len(state.Messages) == 0:
		prefs := state.Preferences
		s.assistant.Reset(state)
		state.Preferences = prefs
	}
	return state, nil
}

// commit saves next and makes it the session state. Callers hold sess.mu.
func (s *ChatService) commit(ctx context.Context, sess *session, next *model.ConversationState) error {
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	sess.state = next
	return nil
}

// deliverReply appends a deferred reply unless a newer turn or a reset
// superseded the user message it answers
func (s *ChatService) deliverReply(id, userMsgID string, reply *model.Reply) {
	ctx, cancel := context.WithTimeout(context.Background(), deferredSaveTimeout)
	defer cancel()

	sess, err := s.acquire(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", id).Msg("failed to load conversation for reply")
		return
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !awaitingReply(sess.state, userMsgID) {
		log.Debug().Str("conversation_id", id).Msg("dropping stale reply")
		return
	}
	next := snapshot(sess.state)
	msg := s.assistant.Deliver(next, reply)
	if err := s.commit(ctx, sess, next); err != nil {
		log.Error().Err(err).Str("conversation_id", id).Msg("failed to save reply")
		return
	}
	s.broker.Publish(id, msg)
	s.armNudge(id, sess)
}

func (s *ChatService) fireNudge(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), deferredSaveTimeout)
	defer cancel()

	sess, err := s.acquire(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", id).Msg("failed to load conversation for nudge")
		return
	}
	defer s.release(id, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	next := snapshot(sess.state)
	msg, ok := s.assistant.Nudge(next)
	if !ok {
		return
	}
	if err := s.commit(ctx, sess, next); err != nil {
		log.Error().Err(err).Str("conversation_id", id).Msg("failed to save nudge")
		return
	}
	s.broker.Publish(id, msg)
	log.Debug().Str("conversation_id", id).Msg("idle nudge sent")
}

// awaitingReply reports whether userMsgID is the latest user message and
// only nudges have been said since
func awaitingReply(state *model.ConversationState, userMsgID string) bool {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		m := state.Messages[i]
		if m.Sender == model.SenderUser {
			return m.ID == userMsgID
		}
		if !m.Nudge {
			return false
		}
	}
	return false
}

// armNudge (re)starts the idleness timer unless the nudge was already sent.
// Callers hold sess.mu.
func (s *ChatService) armNudge(id string, sess *session) {
	if s.cfg.NudgeDelay <= 0 || sess.state.NudgeSent {
		return
	}
	s.scheduler.Schedule(id, TaskNudge, s.cfg.NudgeDelay, func() {
		s.fireNudge(id)
	})
}

func snapshot(state *model.ConversationState) *model.ConversationState {
	cp := *state
	cp.Messages = append([]model.Message(nil), state.Messages...)
	return &cp
}
