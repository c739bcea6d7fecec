package domain

import "errors"

var (
	// ErrInvalidPaymentURI is returned for URIs that are not payment URIs.
	ErrInvalidPaymentURI = errors.New("walletshell: invalid payment uri")

	// ErrAlreadyForwarded is returned when the request was handed to an
	// already running instance.
	ErrAlreadyForwarded = errors.New("walletshell: forwarded to running instance")
)
