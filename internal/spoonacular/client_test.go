package spoonacular

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cache Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		Cache:      cache,
	})
}

func TestSearchQuery(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `[{"id":1,"title":"Tofu Stir Fry","image":"https://img/1.jpg"}]`)
	}, nil)

	recipes, err := client.Search(context.Background(), SearchParams{
		Ingredients:  []string{"tofu", "rice"},
		Number:       10,
		Diet:         "vegetarian",
		Intolerances: []string{"dairy", "eggs"},
	})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, Recipe{ID: 1, Title: "Tofu Stir Fry", Image: "https://img/1.jpg"}, recipes[0])

	require.NotNil(t, got)
	assert.Equal(t, "/recipes/findByIngredients", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "test-key", q.Get("apiKey"))
	assert.Equal(t, "tofu,rice", q.Get("ingredients"))
	assert.Equal(t, "10", q.Get("number"))
	assert.Equal(t, "1", q.Get("ranking"))
	assert.Equal(t, "vegetarian", q.Get("diet"))
	assert.Equal(t, "dairy,eggs", q.Get("intolerances"))
}

func TestSearchOmitsEmptyFilters(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `[]`)
	}, nil)

	recipes, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 3})
	require.NoError(t, err)
	assert.Empty(t, recipes)
	_, hasDiet := got.URL.Query()["diet"]
	_, hasIntolerances := got.URL.Query()["intolerances"]
	assert.False(t, hasDiet)
	assert.False(t, hasIntolerances)
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Options{})

	_, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 1})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, OutcomeConfig, Classify(err))

	_, err = client.Instructions(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = client.Nutrition(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"message":"quota"}`)
	}, nil)

	_, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 1})
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusPaymentRequired, upstream.StatusCode)
	assert.Equal(t, `{"message":"quota"}`, upstream.Body)
	assert.Equal(t, OutcomeUpstream, Classify(err))
	assert.Equal(t, http.StatusPaymentRequired, StatusCode(err))
}

func TestSearchMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}, nil)

	_, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 1})
	var protocol *ProtocolError
	require.ErrorAs(t, err, &protocol)
	assert.Equal(t, OutcomeProtocol, Classify(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestTransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(Options{APIKey: "secret-key-123", BaseURL: base})
	_, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 1})
	require.Error(t, err)
	assert.Equal(t, OutcomeProtocol, Classify(err))
	assert.NotContains(t, err.Error(), "secret-key-123")
}

func TestInstructions(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		outcome Outcome
	}{
		{
			name:    "first block steps",
			body:    `[{"name":"","steps":[{"number":1,"step":"Boil water."},{"number":2,"step":"  "},{"number":3,"step":"Add pasta."}]},{"steps":[{"step":"ignored"}]}]`,
			want:    []string{"Boil water.", "Add pasta."},
			outcome: OutcomeSuccess,
		},
		{name: "empty list", body: `[]`, outcome: OutcomeNoSteps},
		{name: "block without steps", body: `[{"name":"","steps":[]}]`, outcome: OutcomeNoSteps},
		{name: "object instead of list", body: `{"status":"failure"}`, outcome: OutcomeNoSteps},
		{name: "not json", body: `<html>`, outcome: OutcomeProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/recipes/42/analyzedInstructions", r.URL.Path)
				fmt.Fprint(w, tt.body)
			}, nil)

			steps, err := client.Instructions(context.Background(), "42")
			assert.Equal(t, tt.outcome, Classify(err))
			assert.Equal(t, tt.want, steps)
		})
	}
}

func TestNutrition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/7/nutritionWidget.json", r.URL.Path)
		fmt.Fprint(w, `{"calories":"316","protein":"12g","fat":null,"carbs":""}`)
	}, nil)

	n, err := client.Nutrition(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, &Nutrition{Calories: "316", Protein: "12g", Fat: "N/A", Carbohydrates: "N/A"}, n)
}

func TestNutritionMissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"calories":450}`)
	}, nil)

	n, err := client.Nutrition(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "450", n.Calories)
	assert.Equal(t, "N/A", n.Protein)
	assert.Equal(t, "N/A", n.Fat)
	assert.Equal(t, "N/A", n.Carbohydrates)
}

func TestResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	cache := newMemoryCache()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[{"steps":[{"step":"Mix."}]}]`)
	}, cache)

	for i := 0; i < 3; i++ {
		steps, err := client.Instructions(context.Background(), "9")
		require.NoError(t, err)
		assert.Equal(t, []string{"Mix."}, steps)
	}
	assert.Equal(t, int32(1), calls.Load())
	for key := range cache.entries {
		assert.NotContains(t, key, "test-key")
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	cache := newMemoryCache()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, cache)

	_, err := client.Nutrition(context.Background(), "1")
	assert.Equal(t, OutcomeUpstream, Classify(err))
	assert.Empty(t, cache.entries)
}

func TestCacheFailureFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.failGet = true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}, cache)

	recipes, err := client.Search(context.Background(), SearchParams{Ingredients: []string{"egg"}, Number: 1})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Options{}).Configured())
	assert.True(t, NewClient(Options{APIKey: "k"}).Configured())
}
