package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/app"
	"github.com/pageza/alchemorsel-voice/backend/internal/server"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// fakeSpoonacular serves canned recipe API responses and records search queries
type fakeSpoonacular struct {
	mu       sync.Mutex
	searches []string
}

func (f *fakeSpoonacular) searchLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeSpoonacular) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("apiKey") != "test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.URL.Path {
	case "/recipes/findByIngredients":
		f.mu.Lock()
		f.searches = append(f.searches, r.URL.RawQuery)
		f.mu.Unlock()
		fmt.Fprint(w, `[
			{"id": 101, "title": "Grilled Cheese Sandwich", "image": "https://img.example/101.jpg"},
			{"id": 202, "title": "Tomato Basil Bruschetta", "image": "https://img.example/202.jpg"}
		]`)
	case "/recipes/101/analyzedInstructions", "/recipes/202/analyzedInstructions":
		fmt.Fprint(w, `[{"name": "", "steps": [
			{"number": 1, "step": "Toast the bread."},
			{"number": 2, "step": "Top with tomatoes & basil."}
		]}]`)
	case "/recipes/202/nutritionWidget.json":
		fmt.Fprint(w, `{"calories": "180", "protein": "5g", "fat": "7g", "carbs": "24g"}`)
	default:
		http.NotFound(w, r)
	}
}

type conversation struct {
	t       *testing.T
	handler http.Handler
	session string
	attrs   map[string]string
}

func (c *conversation) say(intent string, slots map[string]*types.Slot) types.Response {
	c.t.Helper()
	event := types.Event{
		SessionID: c.session,
		SessionState: types.SessionState{
			SessionAttributes: c.attrs,
			Intent:            &types.Intent{Name: intent, Slots: slots},
		},
	}
	body, err := json.Marshal(event)
	require.NoError(c.t, err)

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/fulfillment", bytes.NewReader(body)))
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var resp types.Response
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.attrs = resp.SessionState.SessionAttributes
	return resp
}

func spoken(resp types.Response) string {
	return resp.Messages[0].Content
}

func slot(values ...string) *types.Slot {
	s := &types.Slot{}
	for _, v := range values {
		s.Values = append(s.Values, &types.Slot{Value: &types.SlotValue{InterpretedValue: v}})
	}
	return s
}

func setup(t *testing.T) (*conversation, *fakeSpoonacular) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := &fakeSpoonacular{}
	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Environment:        config.Test,
		SpoonacularAPIKey:  "test-key",
		SpoonacularBaseURL: upstream.URL,
		ProfileStore:       config.StoreSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "voice.db"),
		SearchResultCount:  10,
		RateLimitPerMinute: 60,
		CacheTTL:           time.Hour,
	}
	a, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &conversation{t: t, handler: server.New(a).Handler(), session: gofakeit.UUID()}, fake
}

func TestCookingConversation(t *testing.T) {
	c, fake := setup(t)

	resp := c.say("SearchRecipes", map[string]*types.Slot{"Ingredient": slot("bread", "tomato")})
	assert.Contains(t, spoken(resp), "The top result is Grilled Cheese Sandwich.")
	assert.Equal(t, "101", c.attrs["currentRecipeId"])
	searches := fake.searchLog()
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0], "ingredients=bread%2Ctomato")

	resp = c.say("StartCooking", nil)
	assert.Equal(t, "<speak>OK, let's cook Grilled Cheese Sandwich. <break time='500ms'/> Step 1: Toast the bread. <break time='1s'/> Say 'next'.</speak>", spoken(resp))
	assert.Equal(t, types.DialogActionElicitIntent, resp.SessionState.DialogAction.Type)

	resp = c.say("NextStep", nil)
	assert.Equal(t, "<speak>Step 2: Top with tomatoes &amp; basil. <break time='1s'/> Say 'next'.</speak>", spoken(resp))

	resp = c.say("NextStep", nil)
	assert.Equal(t, "<speak>You&#39;re all done! Enjoy.</speak>", spoken(resp))
	assert.Empty(t, c.attrs)
	assert.Equal(t, types.DialogActionClose, resp.SessionState.DialogAction.Type)
}

func TestVeganProfileShapesSearch(t *testing.T) {
	c, fake := setup(t)

	resp := c.say("UpdateProfile", map[string]*types.Slot{"Diet": slot("vegan"), "Allergy": slot("peanut")})
	assert.Equal(t, "<speak>OK! Updated profile with diet as vegan and allergies as peanut.</speak>", spoken(resp))

	resp = c.say("UpdateProfile", map[string]*types.Slot{"Allergy": slot("soy")})
	assert.Equal(t, "<speak>OK! Updated profile with allergies as peanut, soy.</speak>", spoken(resp))

	resp = c.say("SearchRecipes", map[string]*types.Slot{"Ingredient": slot("bread")})
	assert.Contains(t, spoken(resp), "for your vegan diet avoiding dairy,eggs,peanut,soy. The top result is Tomato Basil Bruschetta.")
	assert.Equal(t, "202", c.attrs["currentRecipeId"])

	searches := fake.searchLog()
	require.Len(t, searches, 1)
	assert.NotContains(t, searches[0], "diet=")
	assert.Contains(t, searches[0], "intolerances=dairy%2Ceggs%2Cpeanut%2Csoy")

	resp = c.say("GetNutrition", nil)
	assert.Equal(t, "<speak>Nutrition for Tomato Basil Bruschetta (per serving): Calories are 180, Protein is 5g, Fat is 7g, and Carbohydrates are 24g.</speak>", spoken(resp))
	assert.Equal(t, "202", c.attrs["currentRecipeId"])

	var appContext map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(c.attrs["appContext"]), &appContext))
	assert.Equal(t, "https://img.example/202.jpg", appContext["recipeInfo"]["imageUrl"])
}

func TestMalformedEventGetsFallbackEnvelope(t *testing.T) {
	c, _ := setup(t)

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/fulfillment", strings.NewReader(`[1,2`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp types.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "<speak>Sorry, I&#39;m not sure how to handle that command.</speak>", spoken(resp))
}
