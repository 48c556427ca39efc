// Package workflow runs the underwriting pipeline: deterministic engines
// first, then the agent panel, then report assembly, with every step
// broadcast as an event to streaming subscribers.
package workflow

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// AgentStatus is the lifecycle state an event reports.
type AgentStatus string

const (
	StatusPending   AgentStatus = "pending"
	StatusActive    AgentStatus = "active"
	StatusCompleted AgentStatus = "completed"
	StatusError     AgentStatus = "error"
)

// Event is one step of a running workflow, as delivered to stream
// subscribers and persisted per agent.
type Event struct {
	EventID   string                 `json:"event_id"`
	Timestamp string                 `json:"timestamp"`
	AgentName string                 `json:"agent_name"`
	AgentRole string                 `json:"agent_role"`
	Status    AgentStatus            `json:"status"`
	Message   string                 `json:"message"`
	Analysis  string                 `json:"analysis,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// ToJSON renders the event for wire delivery.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// eventIDGen issues sequential per-workflow event IDs of the form
// evt_<timestamp>_<counter>.
type eventIDGen struct {
	counter atomic.Uint64
}

func (g *eventIDGen) next() string {
	return fmt.Sprintf("evt_%s_%04d", time.Now().Format("20060102150405"), g.counter.Add(1))
}

// newEvent stamps an event with an ID and the current time.
func (g *eventIDGen) newEvent(agentName, agentRole string, status AgentStatus, message string) Event {
	return Event{
		EventID:   g.next(),
		Timestamp: time.Now().Format(time.RFC3339Nano),
		AgentName: agentName,
		AgentRole: agentRole,
		Status:    status,
		Message:   message,
		Metadata:  map[string]interface{}{},
	}
}
