// Package spoonacular is a client for the three recipe API operations the
// voice assistant needs. Every call returns either a payload or one of the
// typed errors in errors.go; callers branch on Classify.
package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.spoonacular.com"

	searchPath       = "/recipes/findByIngredients"
	instructionsPath = "/recipes/%s/analyzedInstructions"
	nutritionPath    = "/recipes/%s/nutritionWidget.json"

	// rankMaximizeUsed ranks results by how many of the given ingredients they use
	rankMaximizeUsed = 1

	maxErrorBody = 4 << 10
	notAvailable = "N/A"
)

// Recipe is one search candidate
type Recipe struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// SearchParams is a search-by-ingredients query
type SearchParams struct {
	Ingredients  []string
	Number       int
	Diet         string
	Intolerances []string
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	q.Set("ingredients", strings.Join(p.Ingredients, ","))
	q.Set("number", strconv.Itoa(p.Number))
	q.Set("ranking", strconv.Itoa(rankMaximizeUsed))
	if p.Diet != "" {
		q.Set("diet", p.Diet)
	}
	if len(p.Intolerances) > 0 {
		q.Set("intolerances", strings.Join(p.Intolerances, ","))
	}
	return q
}

// Nutrition holds per-serving values as the API renders them, such as
// "316k" or "12g". A field the API omitted is "N/A".
type Nutrition struct {
	Calories      string
	Protein       string
	Fat           string
	Carbohydrates string
}

// Options configures a Client
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Cache      Cache
	CacheTTL   time.Duration
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Client talks to the Spoonacular recipe API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a Client. A missing API key is reported on each call.
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Hour
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search finds recipes that use the given ingredients
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Recipe, error) {
	query := params.values()
	body, err := c.get(ctx, "search", searchPath, query, "search:"+query.Encode())
	if err != nil {
		return nil, err
	}

	var recipes []Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		return nil, c.protocolError("search", fmt.Errorf("decode search results: %w", err))
	}
	return recipes, nil
}

// Instructions returns the ordered step texts of a recipe. ErrNoSteps is
// returned when the payload is well-formed JSON without usable steps.
func (c *Client) Instructions(ctx context.Context, recipeID string) ([]string, error) {
	path := fmt.Sprintf(instructionsPath, url.PathEscape(recipeID))
	body, err := c.get(ctx, "instructions", path, url.Values{}, "instructions:"+recipeID)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, c.protocolError("instructions", fmt.Errorf("instructions payload is not JSON"))
	}

	var blocks []struct {
		Name  string `json:"name"`
		Steps []struct {
			Number int    `json:"number"`
			Step   string `json:"step"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(body, &blocks); err != nil || len(blocks) == 0 {
		return nil, ErrNoSteps
	}

	steps := make([]string, 0, len(blocks[0].Steps))
	for _, s := range blocks[0].Steps {
		if text := strings.TrimSpace(s.Step); text != "" {
			steps = append(steps, text)
		}
	}
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return steps, nil
}

// Nutrition returns the per-serving nutrition summary of a recipe
func (c *Client) Nutrition(ctx context.Context, recipeID string) (*Nutrition, error) {
	path := fmt.Sprintf(nutritionPath, url.PathEscape(recipeID))
	body, err := c.get(ctx, "nutrition", path, url.Values{}, "nutrition:"+recipeID)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, c.protocolError("nutrition", fmt.Errorf("decode nutrition: %w", err))
	}
	return &Nutrition{
		Calories:      renderField(fields["calories"]),
		Protein:       renderField(fields["protein"]),
		Fat:           renderField(fields["fat"]),
		Carbohydrates: renderField(fields["carbs"]),
	}, nil
}

func renderField(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return notAvailable
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			return notAvailable
		}
		return s
	}
	return string(raw)
}

// get issues one GET and returns the 2xx body. cacheKey must not contain the API key.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, cacheKey string) ([]byte, error) {
	if c.apiKey == "" {
		c.metrics.UpstreamRequest(op, string(OutcomeConfig), 0)
		return nil, ErrMissingAPIKey
	}

	if body, ok := c.cached(ctx, cacheKey); ok {
		return body, nil
	}

	endpoint := c.baseURL + path
	c.logger.Info("calling recipe API", zap.String("op", op), zap.String("url", endpoint+"?"+query.Encode()))

	query.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, c.protocolError(op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(op, string(OutcomeProtocol), time.Since(start))
		return nil, c.protocolError(op, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.UpstreamRequest(op, string(OutcomeUpstream), time.Since(start))
		upstream := &UpstreamError{Op: op, StatusCode: resp.StatusCode}
		// the body only enriches the log line
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
			upstream.Body = string(data)
		}
		c.logger.Warn("recipe API error",
			zap.String("op", op),
			zap.Int("status", upstream.StatusCode),
			zap.String("body", upstream.Body))
		return nil, upstream
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequest(op, string(OutcomeProtocol), time.Since(start))
		return nil, c.protocolError(op, fmt.Errorf("read body: %w", err))
	}
	c.metrics.UpstreamRequest(op, string(OutcomeSuccess), time.Since(start))

	c.store(ctx, cacheKey, body)
	return body, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("recipe cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.logger.Warn("recipe cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Client) protocolError(op string, err error) error {
	c.logger.Warn("recipe API protocol error", zap.String("op", op), zap.Error(err))
	return &ProtocolError{Op: op, Err: err}
}

// redact strips the API key from transport errors, which quote the URL
func redact(err error, apiKey string) error {
	msg := err.Error()
	if !strings.Contains(msg, apiKey) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, apiKey, "REDACTED"))
}
