package booking

import "errors"

var (
	ErrSeatUnavailable = errors.New("seat is held by another booking")
	ErrFlightSoldOut   = errors.New("flight has no available seats")
)
