package types

// Event represents a typed event emitted by a committed market operation.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
