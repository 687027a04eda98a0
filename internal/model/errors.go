package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("validation record not found")

	// ErrAlreadyExists is returned when storing a record that is already present
	ErrAlreadyExists = errors.New("validation record already exists")
)
