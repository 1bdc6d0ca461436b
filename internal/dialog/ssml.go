package dialog

import (
	"html"
	"strings"
)

const (
	speakOpen  = "<speak>"
	speakClose = "</speak>"
)

// Break is an SSML pause of the given duration, such as "500ms" or "1s"
func Break(duration string) string {
	return "<break time='" + duration + "'/>"
}

// Escape escapes the characters that are structural in SSML
func Escape(text string) string {
	return html.EscapeString(text)
}

// Speak escapes text and wraps it in the SSML root element
func Speak(text string) string {
	return speakOpen + Escape(text) + speakClose
}

// IsSpeak reports whether markup is already wrapped in the SSML root element
func IsSpeak(markup string) bool {
	return strings.HasPrefix(strings.TrimSpace(markup), speakOpen)
}

// Wrap puts markup that is already escaped into the SSML root element
func Wrap(markup string) string {
	return speakOpen + markup + speakClose
}
