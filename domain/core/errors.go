package core

import (
	"errors"
)

// Domain errors - centralized error definitions
var (
	// Fatal input errors
	ErrInputNotFound = errors.New("input workbook not found")

	// Output naming errors
	ErrNameExhausted  = errors.New("unable to allocate unique table name")
	ErrDuplicateTable = errors.New("output table already exists")
	ErrWriterClosed   = errors.New("workbook writer closed")

	// Source errors
	ErrTableNotFound = errors.New("table not found")
)
