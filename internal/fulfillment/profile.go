package fulfillment

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/alchemorsel-voice/backend/internal/dialog"
	"github.com/pageza/alchemorsel-voice/backend/internal/models"
	"github.com/pageza/alchemorsel-voice/backend/internal/service"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// updateProfile saves a diet and/or allergies for the session's user.
// Allergies are added to the stored set, the diet is overwritten.
func (r *Router) updateProfile(ctx context.Context, event *types.Event) reply {
	attrs := event.Attributes()
	if !r.profiles.Available() {
		return closeWith(attrs, dialog.SSML(msgNoStore), outcomeNoStore)
	}
	if event.SessionID == "" {
		return closeWith(attrs, dialog.SSML(msgNoSessionID), outcomeNoSession)
	}

	var diet *string
	if value, ok := event.Slot(SlotDiet).InterpretedValue(); ok && strings.TrimSpace(value) != "" {
		value = strings.TrimSpace(value)
		diet = &value
	}
	allergies := models.NormalizeAllergies(event.Slot(SlotAllergy).InterpretedValues())

	profile, err := r.profiles.Update(ctx, event.SessionID, diet, allergies)
	switch {
	case errors.Is(err, service.ErrNothingToUpdate):
		return closeWith(attrs, dialog.SSML(msgNothingToUpdate), outcomeNoInput)
	case errors.Is(err, service.ErrStoreUnavailable):
		return closeWith(attrs, dialog.SSML(msgNoStore), outcomeNoStore)
	case err != nil:
		return closeWith(attrs, dialog.SSML(msgSaveFailed), outcomeStoreFailed)
	}

	var saved []string
	if diet != nil {
		saved = append(saved, "diet as "+*diet)
	}
	if len(allergies) > 0 {
		stored := allergies
		if profile != nil && len(profile.Allergies) > 0 {
			stored = profile.Allergies
		}
		saved = append(saved, "allergies as "+strings.Join(stored, ", "))
	}
	msg := "OK! Updated profile with " + strings.Join(saved, " and ") + "."
	return closeWith(attrs, dialog.SSML(msg), outcomeSuccess)
}
