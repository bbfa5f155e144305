package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ReadActions are the actions that never change state.
var ReadActions = []Action{ActionView, ActionList}

// WriteActions are the actions that change state.
var WriteActions = []Action{ActionCreate, ActionUpdate, ActionDelete}

// IsRead reports whether a is a read-only action.
func (a Action) IsRead() bool {
	return a == ActionView || a == ActionList
}
