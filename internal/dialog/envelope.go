package dialog

import (
	"encoding/json"

	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

const defaultSSML = "<speak>Processing complete.</speak>"

// RecipeInfo is display data about the last search result
type RecipeInfo struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// Output is what a handler wants to say. SSML wins over PlainText; an empty
// Output produces a generic spoken acknowledgement.
type Output struct {
	SSML       string
	PlainText  string
	RecipeInfo *RecipeInfo
}

// SSML returns an Output carrying spoken markup
func SSML(markup string) Output {
	return Output{SSML: markup}
}

// PlainText returns an Output carrying plain text
func PlainText(text string) Output {
	return Output{PlainText: text}
}

// WithRecipe attaches display data about a recipe
func (o Output) WithRecipe(info RecipeInfo) Output {
	o.RecipeInfo = &info
	return o
}

// BuildResponse assembles the envelope. Close responses are Fulfilled and
// repeat the intent inside the dialog action; every other action is InProgress.
func BuildResponse(attrs map[string]string, intentName string, out Output, dialogAction string) types.Response {
	content, contentType := defaultSSML, types.ContentTypeSSML
	switch {
	case out.SSML != "":
		content = out.SSML
	case out.PlainText != "":
		content, contentType = out.PlainText, types.ContentTypePlainText
	}
	if contentType == types.ContentTypeSSML && !IsSpeak(content) {
		content = Speak(content)
	}

	sessionAttrs := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		sessionAttrs[k] = v
	}
	if out.RecipeInfo != nil {
		// RecipeInfo only holds strings
		appContext, _ := json.Marshal(struct {
			RecipeInfo *RecipeInfo `json:"recipeInfo"`
		}{out.RecipeInfo})
		sessionAttrs[AttrAppContext] = string(appContext)
	}

	state := types.IntentStateInProgress
	if dialogAction == types.DialogActionClose {
		state = types.IntentStateFulfilled
	}
	intent := types.IntentState{Name: intentName, State: state, Slots: map[string]*types.Slot{}}

	action := types.DialogAction{Type: dialogAction}
	if dialogAction == types.DialogActionClose {
		action.Intent = &types.IntentState{
			Name:  intentName,
			State: types.IntentStateFulfilled,
			Slots: map[string]*types.Slot{},
		}
	}

	return types.Response{
		SessionState: types.ResponseSessionState{
			SessionAttributes: sessionAttrs,
			DialogAction:      action,
			Intent:            intent,
		},
		Messages: []types.Message{{ContentType: contentType, Content: content}},
	}
}
