package events

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// EventType identifies the kind of event being emitted
type EventType string

const (
	// EventTypeMatchCompleted is emitted after an engine run finishes
	EventTypeMatchCompleted EventType = "match.completed"

	// EventTypePresetCreated is emitted when a criteria preset is created
	EventTypePresetCreated EventType = "preset.created"

	// EventTypePresetUpdated is emitted when a criteria preset is updated
	EventTypePresetUpdated EventType = "preset.updated"

	// EventTypePresetDeleted is emitted when a criteria preset is soft deleted
	EventTypePresetDeleted EventType = "preset.deleted"
)
