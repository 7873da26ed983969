// Package service implements the progression engine on top of the
// store: points and levels, streaks, missions, leaderboards and
// achievements, with an orchestrator fanning reported activity out
// across all of them.
package service

import (
	"github.com/ecomindsapp/ecominds-server/internal/sse"
)

// Emitter pushes real-time events to connected clients.
// Satisfied by *sse.Manager; nil disables emission.
type Emitter interface {
	Emit(event sse.Event)
}

// emit is a nil-safe send helper shared by the services.
func emit(e Emitter, event sse.Event) {
	if e != nil {
		e.Emit(event)
	}
}
