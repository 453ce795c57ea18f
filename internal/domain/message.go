package domain

import "time"

// ISO-8601 with millisecond precision, matching what clients already parse.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Message is one conversation-history entry. Immutable once created.
// JSON field names are the wire contract with the transcript clients.
type Message struct {
	ID                 int64        `json:"id"`
	DisplayName        string       `json:"userName"`
	ConnectionID       ConnectionID `json:"socketId"`
	OriginalText       string       `json:"original"`
	TranslatedText     string       `json:"translated"`
	ChangedWordIndices []int        `json:"changedIndices"`
	CreatedAt          string       `json:"timestamp"`
}

// NewMessage stamps id and timestamp from the given instant. The id is the
// creation time in epoch milliseconds.
func NewMessage(at time.Time, id ConnectionID, name, original, translated string, changed []int) Message {
	return Message{
		ID:                 at.UnixMilli(),
		DisplayName:        name,
		ConnectionID:       id,
		OriginalText:       original,
		TranslatedText:     translated,
		ChangedWordIndices: changed,
		CreatedAt:          at.UTC().Format(timestampLayout),
	}
}

// Timestamp formats an instant the same way message timestamps are formatted.
func Timestamp(at time.Time) string {
	return at.UTC().Format(timestampLayout)
}
