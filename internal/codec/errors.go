package codec

import "errors"

// Sentinel errors for document parsing and composition.
var (
	ErrMalformed      = errors.New("malformed document")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoText         = errors.New("document contains no extractable text")
	ErrNoTable        = errors.New("document contains no detectable table")
)
