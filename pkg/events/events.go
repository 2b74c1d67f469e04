// Package events defines the event types published by the transition
// pipeline: the post-commit notifications the async trigger phase turns
// into work for downstream consumers.
package events

import "time"

type EventType string

const Topic = "stateforge.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TransitionCommittedEvent   EventType = "transition.committed"
	NotificationRequestedEvent EventType = "notification.requested"
	GenerationRequestedEvent   EventType = "generation.requested"
	AsyncTriggerFailedEvent    EventType = "trigger.async.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	ArtifactID string         `json:"artifact_id"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TransitionCommitted is published once per committed transition, after
// the synchronous phase's transaction succeeds.
type TransitionCommitted struct {
	BaseEvent

	Transition string `json:"transition"`
	FromState  string `json:"from_state"`
	ToState    string `json:"to_state"`
	UserID     int    `json:"user_id"`
}

func (e TransitionCommitted) GetType() EventType {
	return TransitionCommittedEvent
}

// NotificationRequested asks the notification consumer to fan a message
// out to the listed groups.
type NotificationRequested struct {
	BaseEvent

	TriggerName string `json:"trigger_name"`
	Subject     string `json:"subject"`
	GroupIDs    []int  `json:"group_ids,omitempty"`
}

func (e NotificationRequested) GetType() EventType {
	return NotificationRequestedEvent
}

// GenerationRequested asks the generation consumer to create a child
// artifact of the given type under the transitioned artifact.
type GenerationRequested struct {
	BaseEvent

	TriggerName  string `json:"trigger_name"`
	ArtifactType string `json:"artifact_type"`
	NamePrefix   string `json:"name_prefix,omitempty"`
}

func (e GenerationRequested) GetType() EventType {
	return GenerationRequestedEvent
}

// AsyncTriggerFailed reports a post-commit trigger failure. The
// transition itself stays committed; this event is the out-of-band
// failure surface.
type AsyncTriggerFailed struct {
	BaseEvent

	TriggerName string `json:"trigger_name"`
	Error       string `json:"error"`
}

func (e AsyncTriggerFailed) GetType() EventType {
	return AsyncTriggerFailedEvent
}
