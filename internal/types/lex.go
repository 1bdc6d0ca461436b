package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedEvent is returned when an inbound event cannot be decoded or validated
var ErrMalformedEvent = errors.New("malformed event")

// FallbackIntent is the intent name used when the event carries none
const FallbackIntent = "FallbackIntent"

// Dialog action types
const (
	DialogActionClose        = "Close"
	DialogActionElicitIntent = "ElicitIntent"
)

// Intent states
const (
	IntentStateFulfilled  = "Fulfilled"
	IntentStateInProgress = "InProgress"
)

// Message content types
const (
	ContentTypeSSML      = "SSML"
	ContentTypePlainText = "PlainText"
)

// Event is the inbound code-hook event sent by the conversational front end
type Event struct {
	SessionID        string       `json:"sessionId" validate:"max=256"`
	InputTranscript  string       `json:"inputTranscript,omitempty"`
	InvocationSource string       `json:"invocationSource,omitempty" validate:"omitempty,oneof=DialogCodeHook FulfillmentCodeHook"`
	SessionState     SessionState `json:"sessionState"`
}

// SessionState is the inbound session state
type SessionState struct {
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
	Intent            *Intent           `json:"intent,omitempty"`
}

// Intent is the recognized intent with its slots
type Intent struct {
	Name  string           `json:"name" validate:"max=100"`
	State string           `json:"state,omitempty"`
	Slots map[string]*Slot `json:"slots"`
}

// Slot holds either a single value or, for multi-valued slots, a list of values
type Slot struct {
	Shape  string     `json:"shape,omitempty"`
	Value  *SlotValue `json:"value,omitempty"`
	Values []*Slot    `json:"values,omitempty"`
}

// SlotValue is one recognized slot value
type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

var validate = validator.New()

// ParseEvent decodes and validates a raw event
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := ValidateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ValidateEvent checks an already decoded event
func ValidateEvent(event *Event) error {
	if event == nil {
		return fmt.Errorf("%w: empty event", ErrMalformedEvent)
	}
	if err := validate.Struct(event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

// IntentName returns the intent name, or FallbackIntent when absent at any level
func (e *Event) IntentName() string {
	if e == nil || e.SessionState.Intent == nil || e.SessionState.Intent.Name == "" {
		return FallbackIntent
	}
	return e.SessionState.Intent.Name
}

// Slot returns the named slot, or nil
func (e *Event) Slot(name string) *Slot {
	if e == nil || e.SessionState.Intent == nil {
		return nil
	}
	return e.SessionState.Intent.Slots[name]
}

// Attributes returns the inbound session attributes, never nil
func (e *Event) Attributes() map[string]string {
	if e == nil || e.SessionState.SessionAttributes == nil {
		return map[string]string{}
	}
	return e.SessionState.SessionAttributes
}

// InterpretedValues returns the interpreted values of the slot in order.
// A multi-valued slot wins over a single value; values without an
// interpreted form are skipped.
func (s *Slot) InterpretedValues() []string {
	if s == nil {
		return []string{}
	}
	values := []string{}
	if len(s.Values) > 0 {
		for _, v := range s.Values {
			if v != nil && v.Value != nil && v.Value.InterpretedValue != "" {
				values = append(values, v.Value.InterpretedValue)
			}
		}
		return values
	}
	if s.Value != nil && s.Value.InterpretedValue != "" {
		values = append(values, s.Value.InterpretedValue)
	}
	return values
}

// InterpretedValue returns the first interpreted value of the slot
func (s *Slot) InterpretedValue() (string, bool) {
	values := s.InterpretedValues()
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Response is the outbound envelope
type Response struct {
	SessionState ResponseSessionState `json:"sessionState"`
	Messages     []Message            `json:"messages"`
}

// ResponseSessionState is the outbound session state
type ResponseSessionState struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	DialogAction      DialogAction      `json:"dialogAction"`
	Intent            IntentState       `json:"intent"`
}

// DialogAction tells the front end what to do next. Close actions echo the intent.
type DialogAction struct {
	Type   string       `json:"type"`
	Intent *IntentState `json:"intent,omitempty"`
}

// IntentState describes the intent in the response
type IntentState struct {
	Name  string           `json:"name"`
	State string           `json:"state"`
	Slots map[string]*Slot `json:"slots"`
}

// Message is one output message
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}
