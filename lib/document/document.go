package document

// --------------------------------------------------------------------------
// Document Type
// --------------------------------------------------------------------------

// Document represents a single document stored on the server.
// The Data map holds the schemaless user payload, all other fields
// are managed by the server and must not be modified by clients.
type Document struct {
	ID         string         `json:"id" msgpack:"id" mapstructure:"id"`
	Collection string         `json:"collection" msgpack:"collection" mapstructure:"collection"`
	Data       map[string]any `json:"data" msgpack:"data" mapstructure:"data"`
	CreatedAt  string         `json:"created_at,omitempty" msgpack:"created_at,omitempty" mapstructure:"created_at"`
	UpdatedAt  string         `json:"updated_at,omitempty" msgpack:"updated_at,omitempty" mapstructure:"updated_at"`
}

// --------------------------------------------------------------------------
// Change Notification Model
// --------------------------------------------------------------------------

// ChangeType classifies the change notifications delivered to subscriptions.
type ChangeType uint8

const (
	ChangeInitial ChangeType = iota // 0: Initial result set entry delivered after subscribing.
	ChangeInsert                    // 1: A document matching the query was inserted.
	ChangeUpdate                    // 2: A document matching the query was updated.
	ChangeDelete                    // 3: A document matching the query was deleted.
)

// String returns the string representation of a ChangeType.
func (t ChangeType) String() string {
	switch t {
	case ChangeInitial:
		return "initial"
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParseChangeType converts the wire representation of a change type back into
// a ChangeType. Unknown values map to ChangeInitial, matching the zero value
// the server uses for snapshot entries.
func ParseChangeType(s string) ChangeType {
	switch s {
	case "insert":
		return ChangeInsert
	case "update":
		return ChangeUpdate
	case "delete":
		return ChangeDelete
	default:
		return ChangeInitial
	}
}

// ChangeEvent describes a single change delivered to a subscription callback.
// Which document fields are populated depends on the change type:
//   - ChangeInitial: Document holds the snapshot entry
//   - ChangeInsert:  NewDoc holds the inserted document
//   - ChangeUpdate:  NewDoc holds the new state, OldData the previous payload
//   - ChangeDelete:  OldData holds the payload of the removed document
type ChangeEvent struct {
	Type     ChangeType
	Document *Document
	NewDoc   *Document
	OldData  map[string]any
}

// ChangeFunc is the callback type invoked for every change event of a
// subscription. Callbacks for a single subscription are never invoked
// concurrently and always observe events in server order.
type ChangeFunc func(event ChangeEvent)

// --------------------------------------------------------------------------
// Subscription Handle
// --------------------------------------------------------------------------

// Subscription is the handle returned by IDocumentStore.Subscribe. It
// identifies an active change feed and is required to cancel it again.
type Subscription struct {
	// ID is the correlation id the server uses to tag notifications
	// belonging to this subscription.
	ID string
	// Query is the change query this subscription was created with.
	Query string
}
