package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferences_Stage(t *testing.T) {
	rent := TypeRent
	budget := 1500.0
	beds := 2
	loc := "Camden"

	assert.Equal(t, StageIdle, Preferences{}.Stage())
	assert.Equal(t, StagePartiallyCollected, Preferences{Location: &loc}.Stage())
	assert.Equal(t, StagePartiallyCollected, Preferences{Type: &rent, Budget: &budget, Bedrooms: &beds}.Stage())
	assert.Equal(t, StageComplete, Preferences{Type: &rent, Budget: &budget, Bedrooms: &beds, Location: &loc}.Stage())
}

func TestPreferences_ApplyIsIdempotent(t *testing.T) {
	sale := TypeSale
	budget := 650_000.0
	beds := 3
	loc := "Clapham"

	patches := []PreferencePatch{
		{},
		{Location: &loc},
		{Type: &sale, ClearBudget: true},
		{Type: &sale, Budget: &budget, Bedrooms: &beds, ClearBudget: true},
	}
	rent := TypeRent
	old := 1600.0
	start := Preferences{Type: &rent, Budget: &old}

	for _, patch := range patches {
		once := start.Apply(patch)
		twice := once.Apply(patch)
		assert.Equal(t, once, twice)
	}
}

func TestPreferences_ApplyClearsBudgetBeforeOverwrite(t *testing.T) {
	rent := TypeRent
	sale := TypeSale
	old := 1600.0
	fresh := 500_000.0
	start := Preferences{Type: &rent, Budget: &old}

	cleared := start.Apply(PreferencePatch{Type: &sale, ClearBudget: true})
	assert.Nil(t, cleared.Budget)
	assert.Equal(t, TypeSale, *cleared.Type)

	replaced := start.Apply(PreferencePatch{Type: &sale, Budget: &fresh, ClearBudget: true})
	if assert.NotNil(t, replaced.Budget) {
		assert.Equal(t, fresh, *replaced.Budget)
	}

	// the merged value does not alias the patch
	fresh = 1
	assert.Equal(t, 500_000.0, *replaced.Budget)
	assert.Equal(t, 1600.0, *start.Budget, "Apply leaves the receiver untouched")
}

func TestPreferencePatch_Empty(t *testing.T) {
	loc := "Camden"
	assert.True(t, PreferencePatch{}.Empty())
	assert.False(t, PreferencePatch{Location: &loc}.Empty())
	assert.False(t, PreferencePatch{ClearBudget: true}.Empty())
}
