package models

import "errors"

var (
	ErrUnknownTicker   = errors.New("unknown ticker")
	ErrOverlayNotFound = errors.New("overlay not found")
	ErrInvalidKind     = errors.New("invalid series kind")
)
