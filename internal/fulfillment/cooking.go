package fulfillment

import (
	"context"
	"errors"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// startCooking loads the steps of the current recipe and speaks the first one
func (r *Router) startCooking(ctx context.Context, event *types.Event) reply {
	attrs := event.Attributes()
	session, _ := dialog.DecodeSession(attrs)
	if !session.HasRecipe() {
		return closeWith(attrs, dialog.SSML(msgNoRecipe), outcomeNoRecipe)
	}
	title := session.TitleOr(recipeFallbackTitle)

	steps, err := r.recipes.Instructions(ctx, session.RecipeID)
	switch outcome := spoonacular.Classify(err); outcome {
	case spoonacular.OutcomeSuccess:
	case spoonacular.OutcomeConfig:
		return closeWith(attrs, dialog.SSML(msgNotConfigured), string(outcome))
	case spoonacular.OutcomeNoSteps:
		return closeWith(attrs, dialog.SSML("Couldn't find steps for "+title+"."), string(outcome))
	case spoonacular.OutcomeUpstream:
		return closeWith(attrs, dialog.SSML(msgStepsUpstream+statusHint(err)), string(outcome))
	default:
		return closeWith(attrs, dialog.SSML(msgStepsProtocol), string(outcome))
	}

	session.StartSteps(steps)
	markup := "OK, let's cook " + dialog.Escape(title) + ". " + dialog.Break("500ms") + " " +
		stepPrompt(session.StepNumber(), session.Step())
	return elicitWith(session.Encode(), dialog.SSML(dialog.Wrap(markup)), outcomeSuccess)
}

// nextStep advances the cooking walk. Finishing the last step ends the
// conversation and clears the session.
func (r *Router) nextStep(_ context.Context, event *types.Event) reply {
	attrs := event.Attributes()
	session, err := dialog.DecodeSession(attrs)
	if errors.Is(err, dialog.ErrCorruptSteps) {
		r.logger.Warn("corrupt cooking state in session")
		return closeWith(session.Encode(), dialog.SSML(msgLostPlace), outcomeCorrupt)
	}
	if !session.HasSteps() {
		return closeWith(attrs, dialog.SSML(msgNoStepsLoaded), outcomeNoSteps)
	}

	if !session.Advance() {
		session.Clear()
		return closeWith(session.Encode(), dialog.SSML(msgAllDone), outcomeCompleted)
	}
	markup := stepPrompt(session.StepNumber(), session.Step())
	return elicitWith(session.Encode(), dialog.SSML(dialog.Wrap(markup)), outcomeSuccess)
}
