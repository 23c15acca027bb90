package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"propertychat/internal/model"
	"propertychat/internal/repository"
	"propertychat/internal/utils"

	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for blank user input
var ErrEmptyMessage = errors.New("message is empty")

const (
	greetingText = "Hello! I'm here to help you find the perfect property in London. " +
		"To get started, tell me whether you'd like to rent or buy, your budget, " +
		"how many bedrooms you need, and your preferred location. What are you looking for?"
	idlePromptText = "I'd be happy to help! Could you tell me whether you're looking to rent or buy, " +
		"your budget, number of bedrooms, and preferred location?"
	nudgeText = "Is there anything I can help you with?"

	// DefaultTopK is how many listings a reply surfaces
	DefaultTopK = 3
)

// StarterQuestions are offered before the first user turn
var StarterQuestions = []string{
	"2 bedroom under £1800 to rent in Camden",
	"Flats to rent in Shoreditch",
	"I want to buy a 3 bedroom house in Clapham",
	"1 bedroom near King's Cross",
	"Tell me about transport in Canary Wharf",
	"Studio apartments to rent under £1400",
}

// Assistant is the conversation controller. It holds no per-conversation
// state; every turn operates on the ConversationState passed in.
type Assistant struct {
	classifier *IntentClassifier
	extractor  *PreferenceExtractor
	ranker     *Ranker
	topK       int

	now   func() time.Time
	newID func() string
}

// NewAssistant wires the engine over a catalog
func NewAssistant(catalog *repository.Catalog, topK int) *Assistant {
	if topK <= 0 {
		topK = DefaultTopK
	}
	listings := catalog.Listings()
	return &Assistant{
		classifier: NewIntentClassifier(catalog.Areas()),
		extractor:  NewPreferenceExtractor(listings),
		ranker:     NewRanker(listings),
		topK:       topK,
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:      uuid.NewString,
	}
}

// Classifier exposes the intent classifier
func (a *Assistant) Classifier() *IntentClassifier { return a.classifier }

// Extractor exposes the preference extractor
func (a *Assistant) Extractor() *PreferenceExtractor { return a.extractor }

// Ranker exposes the matching engine
func (a *Assistant) Ranker() *Ranker { return a.ranker }

// NewState creates an idle conversation seeded with the greeting
func (a *Assistant) NewState(id string) *model.ConversationState {
	state := &model.ConversationState{ID: id}
	a.Reset(state)
	return state
}

// Reset returns a conversation to idle: empty preferences, a fresh log
// holding only the greeting, and the nudge re-armed
func (a *Assistant) Reset(state *model.ConversationState) {
	state.Preferences = model.Preferences{}
	state.NudgeSent = false
	state.Messages = []model.Message{a.newMessage(model.SenderAssistant, &model.Reply{Text: greetingText})}
}

// ApplyUserTurn appends the user's message, updates the accumulated
// preferences and selects the reply. The reply is not appended; delivery
// is the caller's job (see Deliver).
func (a *Assistant) ApplyUserTurn(state *model.ConversationState, utterance string) (*model.Reply, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyMessage
	}
	state.Messages = append(state.Messages, a.newMessage(model.SenderUser, &model.Reply{Text: utterance}))

	previous := state.Preferences
	patch := a.extractor.Extract(utterance, previous)

	// an utterance carrying search criteria is a search even when it
	// mentions a station or a shop
	if intent := a.classifier.Classify(utterance); intent.Informational && !patch.SearchCriteria() {
		reply := a.classifier.Answer(utterance, intent)
		reply.Stage = state.Preferences.Stage()
		return reply, nil
	}

	state.Preferences = previous.Apply(patch)
	budgetReset := patch.ClearBudget && previous.Budget != nil && state.Preferences.Budget == nil

	return a.respond(state.Preferences, budgetReset), nil
}

// Deliver appends a reply to the log and returns the logged message
func (a *Assistant) Deliver(state *model.ConversationState, reply *model.Reply) model.Message {
	msg := a.newMessage(model.SenderAssistant, reply)
	state.Messages = append(state.Messages, msg)
	return msg
}

// Nudge appends the idleness prompt once per conversation
func (a *Assistant) Nudge(state *model.ConversationState) (model.Message, bool) {
	if state.NudgeSent {
		return model.Message{}, false
	}
	msg := a.newMessage(model.SenderAssistant, &model.Reply{Text: nudgeText})
	msg.Nudge = true
	state.Messages = append(state.Messages, msg)
	state.NudgeSent = true
	return msg, true
}

func (a *Assistant) respond(prefs model.Preferences, budgetReset bool) *model.Reply {
	stage := prefs.Stage()
	switch stage {
	case model.StageIdle:
		return &model.Reply{Text: idlePromptText, Stage: stage}
	case model.StageComplete:
		return a.presentMatches(prefs)
	}

	var b strings.Builder
	if budgetReset {
		fmt.Fprintf(&b, "Since you've switched to %s, I've cleared your previous budget because rental and sale prices aren't comparable. ",
			switchedTo(*prefs.Type))
	}
	fmt.Fprintf(&b, "Got it! I have %s. Could you also tell me %s?",
		utils.JoinAnd(collected(prefs)), utils.JoinAnd(missing(prefs)))
	return &model.Reply{Text: b.String(), Stage: stage, BudgetReset: budgetReset}
}

func (a *Assistant) presentMatches(prefs model.Preferences) *model.Reply {
	summary := summarize(prefs)
	reply := &model.Reply{Stage: model.StageComplete}

	if matches := a.ranker.Top(prefs, a.topK); len(matches) > 0 {
		reply.Text = fmt.Sprintf("Here are the best matches for your preferences (%s):", summary)
		reply.Listings = matches
		return reply
	}

	reply.Fallback = true
	reply.Listings = a.ranker.Fallback(prefs, a.topK)
	if len(reply.Listings) == 0 {
		reply.Text = fmt.Sprintf("I couldn't find any properties to %s for (%s) right now. Try another area or budget.",
			prefs.Type.Verb(), summary)
		return reply
	}
	reply.Text = fmt.Sprintf("I couldn't find exact matches for (%s). Here are some close alternatives:", summary)
	return reply
}

func (a *Assistant) newMessage(sender string, reply *model.Reply) model.Message {
	return model.Message{
		ID:        a.newID(),
		Sender:    sender,
		Timestamp: a.now(),
		Kind:      reply.Kind(),
		Text:      reply.Text,
		Listings:  reply.Listings,
		Area:      reply.Area,
		Angle:     reply.Angle,
	}
}

func switchedTo(t model.TransactionType) string {
	if t == model.TypeSale {
		return "buying"
	}
	return "renting"
}

func budgetPhrase(prefs model.Preferences) string {
	s := model.FormatMoney(*prefs.Budget, "GBP")
	if prefs.Type != nil && *prefs.Type == model.TypeRent {
		s += "/" + model.PeriodMonth
	}
	return s
}

func bedroomsPhrase(n int) string {
	if n == 1 {
		return "1 bedroom"
	}
	return fmt.Sprintf("%d bedrooms", n)
}

func collected(prefs model.Preferences) []string {
	var items []string
	if prefs.Type != nil {
		items = append(items, "that you're looking to "+prefs.Type.Verb())
	}
	if prefs.Budget != nil {
		items = append(items, "your "+budgetPhrase(prefs)+" budget")
	}
	if prefs.Bedrooms != nil {
		items = append(items, bedroomsPhrase(*prefs.Bedrooms))
	}
	if prefs.Location != nil {
		items = append(items, *prefs.Location)
	}
	return items
}

func missing(prefs model.Preferences) []string {
	var items []string
	if prefs.Type == nil {
		items = append(items, "whether you want to rent or buy")
	}
	if prefs.Budget == nil {
		items = append(items, "your budget")
	}
	if prefs.Bedrooms == nil {
		items = append(items, "the number of bedrooms you need")
	}
	if prefs.Location == nil {
		items = append(items, "your preferred location")
	}
	return items
}

// summarize names all four resolved preferences, e.g.
// "£1,800/month to rent, 2 bedrooms in Camden"
func summarize(prefs model.Preferences) string {
	return fmt.Sprintf("%s to %s, %s in %s",
		budgetPhrase(prefs), prefs.Type.Verb(), bedroomsPhrase(*prefs.Bedrooms), *prefs.Location)
}
