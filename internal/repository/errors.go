package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("session was modified concurrently")
	ErrNoCapacity      = errors.New("no available seats")
)
