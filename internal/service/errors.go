package service

import "errors"

var (
	ErrValidation     = errors.New("validation")      // 400
	ErrConflict       = errors.New("conflict")        // 400
	ErrUnauthorized   = errors.New("unauthorized")    // 401
	ErrNotFound       = errors.New("not found")       // 404
	ErrSearchDisabled = errors.New("search disabled") // 501
)
