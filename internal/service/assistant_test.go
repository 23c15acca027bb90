package service

import (
	"testing"

	"propertychat/internal/model"
	"propertychat/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistant_NewState(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 0)
	state := a.NewState("c1")

	require.Len(t, state.Messages, 1)
	assert.Equal(t, model.SenderAssistant, state.Messages[0].Sender)
	assert.Equal(t, greetingText, state.Messages[0].Text)
	assert.Equal(t, model.StageIdle, state.Preferences.Stage())
	assert.False(t, state.NudgeSent)
}

func TestAssistant_CompleteInOneTurn(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	reply, err := a.ApplyUserTurn(state, "2 bedroom under £1800 to rent in Camden")
	require.NoError(t, err)

	assert.Equal(t, model.StageComplete, reply.Stage)
	assert.Equal(t, model.StageComplete, state.Preferences.Stage())
	assert.Equal(t, "Here are the best matches for your preferences (£1,800/month to rent, 2 bedrooms in Camden):", reply.Text)
	require.NotEmpty(t, reply.Listings)
	assert.LessOrEqual(t, len(reply.Listings), 3)
	for i, l := range reply.Listings {
		assert.Equal(t, model.TypeRent, l.Listing.Type)
		if i > 0 {
			assert.LessOrEqual(t, l.Score, reply.Listings[i-1].Score)
		}
	}

	// the user message is logged, the reply is not until delivered
	require.Len(t, state.Messages, 2)
	assert.Equal(t, model.SenderUser, state.Messages[1].Sender)

	msg := a.Deliver(state, reply)
	assert.Equal(t, model.KindListings, msg.Kind)
	assert.Len(t, state.Messages, 3)
}

func TestAssistant_PartialPrompt(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	reply, err := a.ApplyUserTurn(state, "I want to rent")
	require.NoError(t, err)
	assert.Equal(t, model.StagePartiallyCollected, reply.Stage)
	assert.Equal(t,
		"Got it! I have that you're looking to rent. Could you also tell me your budget, the number of bedrooms you need and your preferred location?",
		reply.Text)

	reply, err = a.ApplyUserTurn(state, "2 beds in Camden, £1,800 pcm")
	require.NoError(t, err)
	assert.Equal(t, model.StageComplete, reply.Stage)
}

func TestAssistant_TypeSwitchNotice(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")
	state.Preferences = model.Preferences{Type: rentPtr(), Budget: float64Ptr(1600)}

	reply, err := a.ApplyUserTurn(state, "I want to buy")
	require.NoError(t, err)
	assert.True(t, reply.BudgetReset)
	assert.Nil(t, state.Preferences.Budget)
	assert.Equal(t,
		"Since you've switched to buying, I've cleared your previous budget because rental and sale prices aren't comparable. "+
			"Got it! I have that you're looking to buy. Could you also tell me your budget, the number of bedrooms you need and your preferred location?",
		reply.Text)

	_, err = a.ApplyUserTurn(state, "£1600")
	require.NoError(t, err)
	require.NotNil(t, state.Preferences.Budget)
	assert.Equal(t, 1_600_000.0, *state.Preferences.Budget)
}

func TestAssistant_InformationalTurnKeepsPreferences(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")
	state.Preferences = model.Preferences{Type: rentPtr(), Bedrooms: intPtr(2)}
	before := state.Preferences

	reply, err := a.ApplyUserTurn(state, "tell me about transport in Shoreditch")
	require.NoError(t, err)
	assert.Equal(t, before, state.Preferences)
	assert.Equal(t, model.StagePartiallyCollected, reply.Stage)
	require.NotNil(t, reply.Area)
	assert.Equal(t, "Shoreditch", reply.Area.Name)
	assert.Equal(t, model.AngleTransport, reply.Angle)
}

func TestAssistant_SearchMentioningAreaFeatureIsNotInformational(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	reply, err := a.ApplyUserTurn(state, "2 bed flat near Camden station to rent")
	require.NoError(t, err)
	assert.Nil(t, reply.Area)
	require.NotNil(t, state.Preferences.Type)
	assert.Equal(t, model.TypeRent, *state.Preferences.Type)
	require.NotNil(t, state.Preferences.Bedrooms)
	assert.Equal(t, 2, *state.Preferences.Bedrooms)
	require.NotNil(t, state.Preferences.Location)
	assert.Equal(t, "Camden", *state.Preferences.Location)

	// criteria win over an informational keyword in the same utterance
	reply, err = a.ApplyUserTurn(state, "under £2000, near good shopping")
	require.NoError(t, err)
	assert.Nil(t, reply.Area)
	require.NotNil(t, state.Preferences.Budget)
	assert.Equal(t, 2000.0, *state.Preferences.Budget)
}

func TestAssistant_UnrecognisedUtterance(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	reply, err := a.ApplyUserTurn(state, "hello")
	require.NoError(t, err)
	assert.Equal(t, model.StageIdle, reply.Stage)
	assert.Equal(t, idlePromptText, reply.Text)

	state.Preferences = model.Preferences{Location: stringPtr("Camden")}
	before := state.Preferences
	reply, err = a.ApplyUserTurn(state, "hmm, not sure")
	require.NoError(t, err)
	assert.Equal(t, before, state.Preferences)
	assert.Equal(t, model.StagePartiallyCollected, reply.Stage)
}

func TestAssistant_EmptyMessage(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	_, err := a.ApplyUserTurn(state, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, state.Messages, 1)
}

func TestAssistant_Fallback(t *testing.T) {
	catalog := repository.NewCatalog([]model.Listing{
		sale("s1", "Wembley", 1, 300_000),
		rental("r1", "Camden", 4, 5000),
	}, nil)
	a := NewAssistant(catalog, 3)

	state := a.NewState("c1")
	reply, err := a.ApplyUserTurn(state, "rent a 1 bed in Wembley for £500")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "I couldn't find exact matches for (£500/month to rent, 1 bedroom in Wembley). Here are some close alternatives:", reply.Text)
	require.Len(t, reply.Listings, 1)
	assert.Equal(t, "r1", reply.Listings[0].Listing.ID)

	rentalsOnly := NewAssistant(repository.NewCatalog([]model.Listing{rental("r1", "Camden", 4, 5000)}, nil), 3)
	state = rentalsOnly.NewState("c2")
	reply, err = rentalsOnly.ApplyUserTurn(state, "buy a 2 bed in Camden, £500k")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Empty(t, reply.Listings)
	assert.Equal(t, "I couldn't find any properties to buy for (£500,000 to buy, 2 bedrooms in Camden) right now. Try another area or budget.", reply.Text)
}

func TestAssistant_NudgeOnce(t *testing.T) {
	a := NewAssistant(defaultCatalog(t), 3)
	state := a.NewState("c1")

	msg, ok := a.Nudge(state)
	require.True(t, ok)
	assert.True(t, msg.Nudge)
	assert.Equal(t, nudgeText, msg.Text)

	_, ok = a.Nudge(state)
	assert.False(t, ok)
	assert.Len(t, state.Messages, 2)

	a.Reset(state)
	assert.False(t, state.NudgeSent)
	assert.Len(t, state.Messages, 1)
	_, ok = a.Nudge(state)
	assert.True(t, ok)
}
