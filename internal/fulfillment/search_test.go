package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/models"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

func TestSearchIngredientExtraction(t *testing.T) {
	tests := []struct {
		name string
		slot *types.Slot
		want []string
	}{
		{name: "multi value", slot: list("egg", "flour"), want: []string{"egg", "flour"}},
		{name: "single value", slot: single("egg"), want: []string{"egg"}},
		{
			name: "skips values without interpretation",
			slot: &types.Slot{Values: []*types.Slot{single("egg"), {Value: &types.SlotValue{OriginalValue: "hmm"}}, {}}},
			want: []string{"egg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.recipes.On("Configured").Return(true)
			f.profiles.On("GetOrCreate", mock.Anything, "session-1").Return(models.NewUserProfile("session-1"))
			f.recipes.On("Search", mock.Anything, mock.MatchedBy(func(p spoonacular.SearchParams) bool {
				return assert.ObjectsAreEqual(tt.want, p.Ingredients) && p.Number == 10
			})).Return([]spoonacular.Recipe{{ID: 1, Title: "Omelette"}}, nil)

			f.router.Handle(context.Background(), event(IntentSearchRecipes, map[string]*types.Slot{SlotIngredient: tt.slot}, nil))
		})
	}
}

func TestSearchWithoutIngredients(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(true)
	attrs := map[string]string{"currentRecipeId": "9"}

	for _, slots := range []map[string]*types.Slot{nil, {SlotIngredient: nil}, {SlotIngredient: list()}} {
		resp := f.router.Handle(context.Background(), event(IntentSearchRecipes, slots, attrs))
		assert.Equal(t, "<speak>I didn&#39;t catch any valid ingredients. Please try again.</speak>", content(resp))
		assert.Equal(t, attrs, resp.SessionState.SessionAttributes)
		assert.Equal(t, types.DialogActionClose, resp.SessionState.DialogAction.Type)
	}
	f.recipes.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchSuccessLoadsTopRecipe(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(true)
	f.profiles.On("GetOrCreate", mock.Anything, "session-1").Return(models.NewUserProfile("session-1"))
	f.recipes.On("Search", mock.Anything, mock.Anything).Return([]spoonacular.Recipe{
		{ID: 715594, Title: "Mac & Cheese", Image: "https://img.example/715594.jpg"},
		{ID: 2, Title: "Other"},
	}, nil)

	attrs := map[string]string{
		"cookingSteps":     `["old"]`,
		"currentStep":      "0",
		"currentRecipeId":  "1",
		"somethingForeign": "kept",
	}
	resp := f.router.Handle(context.Background(), event(IntentSearchRecipes, map[string]*types.Slot{SlotIngredient: single("macaroni")}, attrs))

	want := dialog.Speak("Success! I found 1 valid recipe(s). The top result is Mac & Cheese. You can ask me to 'start cooking' or 'get nutrition'.")
	assert.Equal(t, want, content(resp))
	assert.Contains(t, content(resp), "Mac &amp; Cheese")

	got := resp.SessionState.SessionAttributes
	assert.Equal(t, "715594", got[dialog.AttrRecipeID])
	assert.Equal(t, "Mac & Cheese", got[dialog.AttrRecipeTitle])
	assert.Equal(t, "kept", got["somethingForeign"])
	assert.NotContains(t, got, dialog.AttrSteps)
	assert.NotContains(t, got, dialog.AttrCurrentStep)

	var appContext struct {
		RecipeInfo dialog.RecipeInfo `json:"recipeInfo"`
	}
	require.NoError(t, json.Unmarshal([]byte(got[dialog.AttrAppContext]), &appContext))
	assert.Equal(t, dialog.RecipeInfo{Title: "Mac & Cheese", ImageURL: "https://img.example/715594.jpg"}, appContext.RecipeInfo)

	assert.Equal(t, types.DialogActionClose, resp.SessionState.DialogAction.Type)
	assert.Equal(t, types.IntentStateFulfilled, resp.SessionState.Intent.State)
}

func TestSearchVeganProfile(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(true)
	profile := &models.UserProfile{UserID: "session-1", Diet: strPtr("Vegan"), Allergies: []string{"peanut"}}
	f.profiles.On("GetOrCreate", mock.Anything, "session-1").Return(profile)
	f.recipes.On("Search", mock.Anything, spoonacular.SearchParams{
		Ingredients:  []string{"bread"},
		Number:       10,
		Intolerances: []string{"dairy", "eggs", "peanut"},
	}).Return([]spoonacular.Recipe{
		{ID: 1, Title: "Grilled Cheese Sandwich"},
		{ID: 2, Title: "Cheeseburger"},
	}, nil)

	resp := f.router.Handle(context.Background(), event(IntentSearchRecipes, map[string]*types.Slot{SlotIngredient: single("bread")}, nil))

	assert.Equal(t, "2", resp.SessionState.SessionAttributes[dialog.AttrRecipeID])
	assert.Contains(t, content(resp), "for your Vegan diet avoiding dairy,eggs,peanut. The top result is Cheeseburger.")
}

func TestSearchNothingLeftAfterFilter(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(true)
	profile := &models.UserProfile{UserID: "session-1", Diet: strPtr("vegan")}
	f.profiles.On("GetOrCreate", mock.Anything, "session-1").Return(profile)
	f.recipes.On("Search", mock.Anything, mock.Anything).Return([]spoonacular.Recipe{{ID: 1, Title: "Beef Stew"}}, nil)

	resp := f.router.Handle(context.Background(), event(IntentSearchRecipes,
		map[string]*types.Slot{SlotIngredient: list("beef", "carrot")},
		map[string]string{"currentRecipeId": "5"}))

	assert.Equal(t, dialog.Speak("Sorry, I couldn't find recipes matching beef,carrot for your vegan diet avoiding dairy,eggs."), content(resp))
	assert.Empty(t, resp.SessionState.SessionAttributes)
	assert.Equal(t, types.DialogActionClose, resp.SessionState.DialogAction.Type)
}

func TestSearchUsesDefaultProfileWithoutSessionID(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(true)
	f.profiles.On("GetOrCreate", mock.Anything, "").Return(models.NewUserProfile(""))
	f.recipes.On("Search", mock.Anything, mock.Anything).Return([]spoonacular.Recipe{}, nil)

	ev := event(IntentSearchRecipes, map[string]*types.Slot{SlotIngredient: single("kale")}, nil)
	ev.SessionID = ""
	resp := f.router.Handle(context.Background(), ev)
	assert.Equal(t, dialog.Speak("Sorry, I couldn't find recipes matching kale."), content(resp))
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "bad key", err: &spoonacular.UpstreamError{Op: "search", StatusCode: http.StatusUnauthorized}, want: "Sorry, there was an error searching for recipes. Check the API key."},
		{name: "quota", err: &spoonacular.UpstreamError{Op: "search", StatusCode: http.StatusPaymentRequired}, want: "Sorry, there was an error searching for recipes. The API quota might be exceeded."},
		{name: "other status", err: &spoonacular.UpstreamError{Op: "search", StatusCode: http.StatusInternalServerError}, want: "Sorry, there was an error searching for recipes."},
		{name: "protocol", err: &spoonacular.ProtocolError{Op: "search", Err: errors.New("eof")}, want: "Sorry, an unexpected problem occurred while searching."},
		{name: "config", err: spoonacular.ErrMissingAPIKey, want: "Assistant not configured: Missing API key."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.recipes.On("Configured").Return(true)
			f.profiles.On("GetOrCreate", mock.Anything, "session-1").Return(models.NewUserProfile("session-1"))
			f.recipes.On("Search", mock.Anything, mock.Anything).Return(nil, tt.err)

			resp := f.router.Handle(context.Background(), event(IntentSearchRecipes,
				map[string]*types.Slot{SlotIngredient: single("egg")},
				map[string]string{"currentRecipeId": "5"}))

			assert.Equal(t, dialog.Speak(tt.want), content(resp))
			assert.Empty(t, resp.SessionState.SessionAttributes)
			assert.Equal(t, types.DialogActionClose, resp.SessionState.DialogAction.Type)
		})
	}
}

func TestSearchNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.recipes.On("Configured").Return(false)

	resp := f.router.Handle(context.Background(), event(IntentSearchRecipes,
		map[string]*types.Slot{SlotIngredient: single("egg")},
		map[string]string{"currentRecipeId": "5"}))

	assert.Equal(t, "<speak>Assistant not configured: Missing API key.</speak>", content(resp))
	assert.Empty(t, resp.SessionState.SessionAttributes)
	f.profiles.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}
