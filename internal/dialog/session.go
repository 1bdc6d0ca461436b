// Package dialog holds the per-conversation state carried in session
// attributes and builds the response envelope returned to the front end.
//
// Session attributes are strings on the wire. They are decoded into a
// Session once per turn and encoded back when the response is built; the
// handlers only ever see typed fields.
package dialog

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Session attribute keys
const (
	AttrRecipeID    = "currentRecipeId"
	AttrRecipeTitle = "currentRecipeTitle"
	AttrSteps       = "cookingSteps"
	AttrCurrentStep = "currentStep"
	AttrAppContext  = "appContext"
)

// ErrCorruptSteps is returned by DecodeSession when the cooking step
// attributes are present but cannot be decoded or are out of range.
var ErrCorruptSteps = errors.New("corrupt cooking step state")

// Session is the typed view of the session attributes.
// Steps and CurrentStep are valid together or both empty.
type Session struct {
	RecipeID    string
	RecipeTitle string
	Steps       []string
	CurrentStep int
	AppContext  string

	// other holds attributes this service does not own; they round-trip unchanged
	other map[string]string
}

// DecodeSession reads session attributes. On ErrCorruptSteps the returned
// session is still usable: the cooking fields are dropped, everything else kept.
func DecodeSession(attrs map[string]string) (Session, error) {
	s := Session{other: map[string]string{}}
	for k, v := range attrs {
		switch k {
		case AttrRecipeID:
			s.RecipeID = v
		case AttrRecipeTitle:
			s.RecipeTitle = v
		case AttrAppContext:
			s.AppContext = v
		case AttrSteps, AttrCurrentStep:
		default:
			s.other[k] = v
		}
	}

	rawSteps, hasSteps := attrs[AttrSteps]
	rawIndex, hasIndex := attrs[AttrCurrentStep]
	if !hasSteps || !hasIndex {
		return s, nil
	}

	var steps []string
	if err := json.Unmarshal([]byte(rawSteps), &steps); err != nil {
		return s, ErrCorruptSteps
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 || index >= len(steps) {
		return s, ErrCorruptSteps
	}

	s.Steps = steps
	s.CurrentStep = index
	return s, nil
}

// HasRecipe reports whether a recipe has been loaded by a search
func (s *Session) HasRecipe() bool {
	return s.RecipeID != ""
}

// HasSteps reports whether a cooking walk is in progress
func (s *Session) HasSteps() bool {
	return len(s.Steps) > 0
}

// TitleOr returns the recipe title or fallback when unknown
func (s *Session) TitleOr(fallback string) string {
	if s.RecipeTitle == "" {
		return fallback
	}
	return s.RecipeTitle
}

// LoadRecipe makes the recipe current and drops any cooking walk
func (s *Session) LoadRecipe(id, title string) {
	s.RecipeID = id
	s.RecipeTitle = title
	s.ClearSteps()
}

// StartSteps begins a cooking walk at the first step
func (s *Session) StartSteps(steps []string) {
	s.Steps = append([]string(nil), steps...)
	s.CurrentStep = 0
}

// Step returns the text of the current step
func (s *Session) Step() string {
	if !s.HasSteps() {
		return ""
	}
	return s.Steps[s.CurrentStep]
}

// StepNumber is the 1-based number of the current step
func (s *Session) StepNumber() int {
	return s.CurrentStep + 1
}

// Advance moves to the next step. It returns false, leaving the session
// untouched, when the current step is the last one.
func (s *Session) Advance() bool {
	if s.CurrentStep+1 >= len(s.Steps) {
		return false
	}
	s.CurrentStep++
	return true
}

// ClearSteps drops the cooking walk
func (s *Session) ClearSteps() {
	s.Steps = nil
	s.CurrentStep = 0
}

// Clear drops every attribute, including ones this service does not own
func (s *Session) Clear() {
	*s = Session{}
}

// Encode returns the wire form of the session
func (s *Session) Encode() map[string]string {
	attrs := make(map[string]string, len(s.other)+5)
	for k, v := range s.other {
		attrs[k] = v
	}
	if s.RecipeID != "" {
		attrs[AttrRecipeID] = s.RecipeID
	}
	if s.RecipeTitle != "" {
		attrs[AttrRecipeTitle] = s.RecipeTitle
	}
	if s.AppContext != "" {
		attrs[AttrAppContext] = s.AppContext
	}
	if s.HasSteps() {
		// a []string always marshals
		steps, _ := json.Marshal(s.Steps)
		attrs[AttrSteps] = string(steps)
		attrs[AttrCurrentStep] = strconv.Itoa(s.CurrentStep)
	}
	return attrs
}
