package waha

// Event is the webhook envelope a WAHA gateway posts for session
// activity. Only the message fields the tracker uses are decoded;
// everything else in the payload is ignored.
type Event struct {
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

// Payload carries the inbound message. Type is the gateway's message
// type, e.g. "chat" for text and "ptt" or "audio" for voice notes.
// WAHA exposes no stable message id here, so deliveries cannot be
// deduplicated.
type Payload struct {
	From string `json:"from"`
	Body string `json:"body"`
	Type string `json:"type"`
}
