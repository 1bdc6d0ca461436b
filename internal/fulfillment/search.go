package fulfillment

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/service"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// searchRecipes finds recipes for the spoken ingredients under the user's
// dietary profile and makes the top result the current recipe.
func (r *Router) searchRecipes(ctx context.Context, event *types.Event) reply {
	if !r.recipes.Configured() {
		return closeWith(map[string]string{}, dialog.SSML(msgNotConfigured), string(spoonacular.OutcomeConfig))
	}

	attrs := event.Attributes()
	ingredients := event.Slot(SlotIngredient).InterpretedValues()
	if len(ingredients) == 0 {
		return closeWith(attrs, dialog.SSML(msgNoIngredients), outcomeNoInput)
	}

	profile := r.profiles.GetOrCreate(ctx, event.SessionID)
	filter := service.NewDietFilterForProfile(profile)

	recipes, err := r.recipes.Search(ctx, filter.SearchParams(ingredients, r.searchCount))
	switch outcome := spoonacular.Classify(err); outcome {
	case spoonacular.OutcomeSuccess:
	case spoonacular.OutcomeConfig:
		return closeWith(map[string]string{}, dialog.SSML(msgNotConfigured), string(outcome))
	case spoonacular.OutcomeUpstream:
		return closeWith(map[string]string{}, dialog.SSML(msgSearchUpstream+statusHint(err)), string(outcome))
	default:
		return closeWith(map[string]string{}, dialog.SSML(msgSearchProtocol), string(outcome))
	}

	recipes = filter.Apply(recipes)
	if len(recipes) == 0 {
		msg := "Sorry, I couldn't find recipes matching " + strings.Join(ingredients, ",") + filter.Describe() + "."
		return closeWith(map[string]string{}, dialog.SSML(msg), outcomeNotFound)
	}

	top := recipes[0]
	r.logger.Debug("selected recipe",
		zap.Int64("recipe_id", top.ID),
		zap.String("title", top.Title),
		zap.Int("candidates", len(recipes)))

	// the decoded cooking fields are replaced below, so a corrupt walk is irrelevant here
	session, _ := dialog.DecodeSession(attrs)
	session.LoadRecipe(strconv.FormatInt(top.ID, 10), top.Title)

	msg := "Success! I found 1 valid recipe(s)" + filter.Describe() +
		". The top result is " + top.Title +
		". You can ask me to 'start cooking' or 'get nutrition'."
	out := dialog.SSML(msg).WithRecipe(dialog.RecipeInfo{Title: top.Title, ImageURL: top.Image})
	return closeWith(session.Encode(), out, outcomeSuccess)
}
