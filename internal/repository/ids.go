package repository

import "github.com/google/uuid"

// newID mints a primary key for rows the repository creates itself, such
// as staffing rows produced by a diff/merge.
func newID() string {
	return uuid.NewString()
}
