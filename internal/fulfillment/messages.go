package fulfillment

import (
	"net/http"
	"strconv"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
)

// Spoken messages. Handlers pass these as plain text; the envelope builder
// escapes and wraps them.
const (
	msgFallback       = "Sorry, I'm not sure how to handle that command."
	msgNotConfigured  = "Assistant not configured: Missing API key."
	msgNoRecipe       = "No recipe loaded."
	msgNoIngredients  = "I didn't catch any valid ingredients. Please try again."
	msgSearchUpstream = "Sorry, there was an error searching for recipes."
	msgSearchProtocol = "Sorry, an unexpected problem occurred while searching."

	msgStepsUpstream = "Error getting instructions from service."
	msgStepsProtocol = "Error processing instructions."
	msgNoStepsLoaded = "No steps loaded."
	msgLostPlace     = "Sorry, I lost my place."
	msgAllDone       = "You're all done! Enjoy."

	msgNutritionUpstream = "Couldn't get nutrition info."
	msgNutritionProtocol = "Error getting nutrition info."

	msgNoStore         = "Can't connect user database."
	msgNoSessionID     = "Can't find session ID."
	msgNothingToUpdate = "Didn't catch what profile information to save."
	msgSaveFailed      = "Problem saving profile update."

	hintBadKey = " Check the API key."
	hintQuota  = " The API quota might be exceeded."

	recipeFallbackTitle    = "recipe"
	nutritionFallbackTitle = "the recipe"
)

// Outcome labels for metrics and logs
const (
	outcomeSuccess     = "success"
	outcomeFallback    = "fallback"
	outcomeMalformed   = "malformed_event"
	outcomeNoInput     = "no_input"
	outcomeNotFound    = "not_found"
	outcomeNoRecipe    = "no_recipe"
	outcomeNoSteps     = "no_steps"
	outcomeCorrupt     = "corrupt_state"
	outcomeCompleted   = "completed"
	outcomeNoStore     = "no_store"
	outcomeNoSession   = "no_session"
	outcomeStoreFailed = "store_error"
)

// statusHint explains the upstream status codes a user can act on
func statusHint(err error) string {
	switch spoonacular.StatusCode(err) {
	case http.StatusUnauthorized:
		return hintBadKey
	case http.StatusPaymentRequired:
		return hintQuota
	default:
		return ""
	}
}

// stepPrompt speaks one cooking step and asks for the next
func stepPrompt(number int, step string) string {
	return "Step " + strconv.Itoa(number) + ": " + dialog.Escape(step) + " " + dialog.Break("1s") + " Say 'next'."
}
