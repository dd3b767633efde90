package domain

import "errors"

var (
	ErrEmptyBook        = errors.New("empty book side")
	ErrCrossedBook      = errors.New("crossed book")
	ErrNegativeQuantity = errors.New("negative quantity")
	ErrMalformedFrame   = errors.New("malformed frame")
	ErrTransportFailed  = errors.New("transport failed: reconnect attempts exhausted")
	ErrTransportClosed  = errors.New("transport closed")
	ErrInsufficientData = errors.New("insufficient data")
)
