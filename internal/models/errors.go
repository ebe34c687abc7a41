package models

import "errors"

var (
	ErrInvalidUser      = errors.New("provided user does not exist or has no permission for this operation")
	ErrNoRequest        = errors.New("requested quote request does not exist")
	ErrNoLine           = errors.New("requested quote line does not exist")
	ErrNoOrder          = errors.New("requested purchase order does not exist")
	ErrNoToken          = errors.New("no quote request matches the provided access token")
	ErrRequestProcessed = errors.New("quote request has already been submitted or closed")
	ErrRequestNotReady  = errors.New("quote request is not in received state")
	ErrRequestFinalized = errors.New("quote request is already in a terminal state")
	ErrLineFinalized    = errors.New("quote line is already in a terminal state")
	ErrForeignLine      = errors.New("quote line does not belong to this quote request")
	ErrNoOfferedLines   = errors.New("quote request has no offered lines to award")
	ErrDuplicateRequest = errors.New("supplier already has a live quote request")
	ErrValidation       = errors.New("malformed bid submission")
)
