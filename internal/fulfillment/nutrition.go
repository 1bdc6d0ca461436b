package fulfillment

import (
	"context"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// getNutrition speaks the per-serving nutrition of the current recipe.
// Session attributes are returned unchanged.
func (r *Router) getNutrition(ctx context.Context, event *types.Event) reply {
	attrs := event.Attributes()
	session, _ := dialog.DecodeSession(attrs)
	if !session.HasRecipe() {
		return closeWith(attrs, dialog.SSML(msgNoRecipe), outcomeNoRecipe)
	}

	n, err := r.recipes.Nutrition(ctx, session.RecipeID)
	switch outcome := spoonacular.Classify(err); outcome {
	case spoonacular.OutcomeSuccess:
	case spoonacular.OutcomeConfig:
		return closeWith(attrs, dialog.SSML(msgNotConfigured), string(outcome))
	case spoonacular.OutcomeUpstream:
		return closeWith(attrs, dialog.SSML(msgNutritionUpstream), string(outcome))
	default:
		return closeWith(attrs, dialog.SSML(msgNutritionProtocol), string(outcome))
	}

	msg := "Nutrition for " + session.TitleOr(nutritionFallbackTitle) + " (per serving): " +
		"Calories are " + n.Calories +
		", Protein is " + n.Protein +
		", Fat is " + n.Fat +
		", and Carbohydrates are " + n.Carbohydrates + "."
	return elicitWith(attrs, dialog.SSML(msg), outcomeSuccess)
}
