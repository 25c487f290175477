package bridge

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrIncompatible   = errors.New("incompatible command version")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrBusy           = errors.New("bridge is busy, try again")
	ErrClosed         = errors.New("bridge is shut down")
	ErrOutsideScope   = errors.New("path is outside the allowed scope")
)
