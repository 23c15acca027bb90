package model

import "time"

// Message senders
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// MessageKind selects which payload a message carries
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindListings MessageKind = "listings"
	KindArea     MessageKind = "area"
)

// Message is one entry of the append-only conversation log
type Message struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      MessageKind     `json:"kind"`
	Text      string          `json:"text"`
	Listings  []ScoredListing `json:"listings,omitempty"`
	Area      *Area           `json:"area,omitempty"`
	Angle     Angle           `json:"angle,omitempty"`
	Nudge     bool            `json:"nudge,omitempty"`
}

// Reply is the engine's output for one user turn
type Reply struct {
	Text        string          `json:"text"`
	Listings    []ScoredListing `json:"listings,omitempty"`
	Area        *Area           `json:"area,omitempty"`
	Angle       Angle           `json:"angle,omitempty"`
	Stage       Stage           `json:"stage"`
	BudgetReset bool            `json:"budget_reset,omitempty"`
	Fallback    bool            `json:"fallback,omitempty"`
}

// Kind derives the message kind the reply will be logged as
func (r *Reply) Kind() MessageKind {
	switch {
	case r.Area != nil:
		return KindArea
	case len(r.Listings) > 0:
		return KindListings
	default:
		return KindText
	}
}

// ConversationState is everything a conversation needs to resume after a reload
type ConversationState struct {
	ID          string      `json:"id"`
	Messages    []Message   `json:"messages"`
	Preferences Preferences `json:"preferences"`
	NudgeSent   bool        `json:"nudge_sent"`
}
