package models

import "github.com/google/uuid"

// assignID gives a record a store-assigned UUID unless one is already set.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
