package model

import "github.com/m-mizutani/goerr/v2"

// Integrity errors
var (
	ErrDanglingReference = goerr.New("relationship references a missing node")
	ErrDuplicateID       = goerr.New("duplicate identifier")
	ErrOutOfRange        = goerr.New("value out of range")
	ErrMissingRequired   = goerr.New("required field is missing")
)

// Context keys for error values
const (
	EntityKey   = "entity"
	EntityIDKey = "entity_id"
	FieldKey    = "field"
	ValueKey    = "value"
)
