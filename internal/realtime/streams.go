package realtime

import "strings"

const (
	teamStreamPrefix = "team."

	// EventInvalidate tells viewers that cached calendar data of the team is stale.
	EventInvalidate = "invalidate"
	// EventPong answers a viewer keepalive.
	EventPong = "pong"
)

// TeamStream returns the stream carrying updates for the team with the given join code.
func TeamStream(code string) string {
	return teamStreamPrefix + strings.ToLower(strings.TrimSpace(code))
}
