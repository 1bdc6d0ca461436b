// Package fulfillment dispatches one conversational turn to its intent
// handler and turns the handler's reply into the outbound envelope.
package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/metrics"
	"github.com/pageza/alchemorsel-voice/backend/internal/service"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// Intent names
const (
	IntentUpdateProfile = "UpdateProfile"
	IntentSearchRecipes = "SearchRecipes"
	IntentStartCooking  = "StartCooking"
	IntentNextStep      = "NextStep"
	IntentGetNutrition  = "GetNutrition"
)

// Slot names
const (
	SlotIngredient = "Ingredient"
	SlotDiet       = "Diet"
	SlotAllergy    = "Allergy"
)

const defaultSearchResultCount = 10

// Deps are the collaborators of a Router. Nil fields get harmless defaults:
// no profile store and an unconfigured recipe client.
type Deps struct {
	Profiles          service.IProfileService
	Recipes           service.IRecipeClient
	Logger            *zap.Logger
	Metrics           *metrics.Metrics
	SearchResultCount int
}

// reply is what a handler decided for the turn
type reply struct {
	attrs   map[string]string
	output  dialog.Output
	action  string
	outcome string
}

func closeWith(attrs map[string]string, out dialog.Output, outcome string) reply {
	return reply{attrs: attrs, output: out, action: types.DialogActionClose, outcome: outcome}
}

func elicitWith(attrs map[string]string, out dialog.Output, outcome string) reply {
	return reply{attrs: attrs, output: out, action: types.DialogActionElicitIntent, outcome: outcome}
}

type handler func(ctx context.Context, event *types.Event) reply

// Router fulfills intents. It holds no per-turn state and is safe for
// concurrent use.
type Router struct {
	profiles    service.IProfileService
	recipes     service.IRecipeClient
	logger      *zap.Logger
	metrics     *metrics.Metrics
	searchCount int
	handlers    map[string]handler
}

// NewRouter creates a Router
func NewRouter(deps Deps) *Router {
	r := &Router{
		profiles:    deps.Profiles,
		recipes:     deps.Recipes,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		searchCount: deps.SearchResultCount,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.profiles == nil {
		r.profiles = service.NewProfileService(nil, r.logger, r.metrics)
	}
	if r.recipes == nil {
		r.recipes = spoonacular.NewClient(spoonacular.Options{Logger: r.logger, Metrics: r.metrics})
	}
	if r.searchCount <= 0 {
		r.searchCount = defaultSearchResultCount
	}

	r.handlers = map[string]handler{
		IntentUpdateProfile: r.updateProfile,
		IntentSearchRecipes: r.searchRecipes,
		IntentStartCooking:  r.startCooking,
		IntentNextStep:      r.nextStep,
		IntentGetNutrition:  r.getNutrition,
	}
	return r
}

// Handle fulfills one turn. Unknown intents get the fallback response;
// Handle never fails.
func (r *Router) Handle(ctx context.Context, event *types.Event) types.Response {
	name := event.IntentName()
	h, ok := r.handlers[name]
	if !ok {
		name = types.FallbackIntent
		h = r.fallback
	}

	res := h(ctx, event)
	r.metrics.IntentHandled(name, res.outcome)
	r.logger.Info("intent fulfilled",
		zap.String("intent", name),
		zap.String("session_id", sessionID(event)),
		zap.String("outcome", res.outcome),
		zap.String("dialog_action", res.action))

	return dialog.BuildResponse(res.attrs, name, res.output, res.action)
}

// HandleRaw decodes and fulfills one turn. A malformed event yields the
// fallback response together with an error wrapping types.ErrMalformedEvent.
func (r *Router) HandleRaw(ctx context.Context, data []byte) (types.Response, error) {
	event, err := types.ParseEvent(data)
	if err != nil {
		r.logger.Warn("rejected event", zap.Error(err))
		r.metrics.IntentHandled(types.FallbackIntent, outcomeMalformed)
		return Fallback(), err
	}
	return r.Handle(ctx, event), nil
}

// Fallback is the response to an intent this service does not handle
func Fallback() types.Response {
	return dialog.BuildResponse(map[string]string{}, types.FallbackIntent, dialog.SSML(msgFallback), types.DialogActionClose)
}

func (r *Router) fallback(_ context.Context, _ *types.Event) reply {
	return closeWith(map[string]string{}, dialog.SSML(msgFallback), outcomeFallback)
}

func sessionID(event *types.Event) string {
	if event == nil {
		return ""
	}
	return event.SessionID
}
