package auditlog

import "time"

// Action tags. Free-form in storage, but writers draw from this vocabulary.
const (
	ActionCreatePrincipal = "create-principal"
	ActionUpdatePrincipal = "update-principal"
	ActionDisable         = "disable"
	ActionEnable          = "enable"
	ActionResetCredential = "reset-credential"
	ActionAddToGroup      = "add-to-group"
	ActionRemoveFromGroup = "remove-from-group"
	ActionCreateGroup     = "create-group"
	ActionSignIn          = "sign-in"
)

// Target entity types.
const (
	EntityPrincipal = "principal"
	EntityGroup     = "group"
	EntitySystem    = "system"
)

// Result tags.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Record is one persisted audit event. Records are append-only: nothing
// updates or deletes them individually, only the retention purge removes
// them in bulk.
type Record struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Username     string    `json:"username"`
	Action       string    `json:"action"`
	EntityType   string    `json:"entity_type,omitempty"`
	EntityID     string    `json:"entity_id,omitempty"`
	EntityName   string    `json:"entity_name,omitempty"`
	Details      string    `json:"details"`
	Result       string    `json:"result"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Entry is the caller-supplied portion of a record. Timestamp and operator
// are filled in by Trail.Log.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	EntityName string

	// Details holds action-specific context, serialized to JSON for
	// storage. Nil becomes the empty object.
	Details map[string]any

	// Result defaults to ResultSuccess when empty.
	Result       string
	ErrorMessage string
}

// Stats summarizes the audit store for display.
type Stats struct {
	Total    int64
	Today    int64
	LastWeek int64
	Oldest   *time.Time
	Newest   *time.Time
}
