package pipeline

import (
	"strings"

	"github.com/grmartinica/Finanza-Zap/internal/waha"
)

// MessageKind classifies what arrived on the webhook.
type MessageKind string

const (
	// KindText is a plain chat message with usable text.
	KindText MessageKind = "text"
	// KindVoice is a voice note. Voice is detected and skipped, never
	// transcribed; this is a stated limitation of the tracker.
	KindVoice MessageKind = "voice"
	// KindUnknown is anything the pipeline does not process.
	KindUnknown MessageKind = "unknown"
)

// Message is the normalized form of an inbound webhook event.
type Message struct {
	Kind   MessageKind
	Text   string // trimmed body, set only for KindText
	Sender string // chat id the message came from
}

// Normalize classifies a webhook event into something the pipeline can
// act on. Events that are not messages, unsupported payload types and
// blank bodies all come back as KindUnknown and are ignored upstream
// without error.
func Normalize(ev waha.Event) Message {
	if ev.Event != "message" {
		return Message{Kind: KindUnknown}
	}

	p := ev.Payload
	switch p.Type {
	case "chat":
		text := strings.TrimSpace(p.Body)
		if text == "" {
			return Message{Kind: KindUnknown, Sender: p.From}
		}
		return Message{Kind: KindText, Text: text, Sender: p.From}
	case "ptt", "audio":
		return Message{Kind: KindVoice, Sender: p.From}
	default:
		return Message{Kind: KindUnknown, Sender: p.From}
	}
}
