package model

import "fmt"

// Action is one of the database management pages
type Action string

const (
	ActionCreate Action = "create"
	ActionInsert Action = "insert"
	ActionFetch  Action = "fetch"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every action in menu order
var Actions = []Action{ActionCreate, ActionInsert, ActionFetch, ActionUpdate, ActionDelete}

// ParseAction converts a path segment into an Action
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionInsert, ActionFetch, ActionUpdate, ActionDelete:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Label returns the menu label for the action
func (a Action) Label() string {
	switch a {
	case ActionCreate:
		return "Create Collection"
	case ActionInsert:
		return "Insert Data"
	case ActionFetch:
		return "Fetch Data"
	case ActionUpdate:
		return "Update Data"
	case ActionDelete:
		return "Delete Data"
	default:
		return string(a)
	}
}
