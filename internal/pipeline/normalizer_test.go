package pipeline

import (
	"testing"

	"github.com/grmartinica/Finanza-Zap/internal/waha"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		ev   waha.Event
		want Message
	}{
		{
			name: "text message",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "5511999999999@c.us", Body: "Gastei 45 reais com Uber", Type: "chat"},
			},
			want: Message{Kind: KindText, Text: "Gastei 45 reais com Uber", Sender: "5511999999999@c.us"},
		},
		{
			name: "text message is trimmed",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "123@c.us", Body: "  paguei 10 no café  \n", Type: "chat"},
			},
			want: Message{Kind: KindText, Text: "paguei 10 no café", Sender: "123@c.us"},
		},
		{
			name: "blank body",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "123@c.us", Body: "   ", Type: "chat"},
			},
			want: Message{Kind: KindUnknown, Sender: "123@c.us"},
		},
		{
			name: "voice note ptt",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "123@c.us", Type: "ptt"},
			},
			want: Message{Kind: KindVoice, Sender: "123@c.us"},
		},
		{
			name: "voice note audio",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "123@c.us", Type: "audio"},
			},
			want: Message{Kind: KindVoice, Sender: "123@c.us"},
		},
		{
			name: "image message",
			ev: waha.Event{
				Event:   "message",
				Payload: waha.Payload{From: "123@c.us", Body: "caption", Type: "image"},
			},
			want: Message{Kind: KindUnknown, Sender: "123@c.us"},
		},
		{
			name: "non-message event",
			ev: waha.Event{
				Event:   "session.status",
				Payload: waha.Payload{Body: "WORKING"},
			},
			want: Message{Kind: KindUnknown},
		},
		{
			name: "empty event",
			ev:   waha.Event{},
			want: Message{Kind: KindUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.ev)
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
