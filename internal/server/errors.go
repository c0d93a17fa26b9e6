package server

import "errors"

var (
	ErrServerClosed         = errors.New("physics server is closed")
	ErrServerNotRunning     = errors.New("physics server is not running")
	ErrServerAlreadyRunning = errors.New("physics server is already running")
	ErrMaxClientsReached    = errors.New("maximum viewers reached")
	ErrInvalidConfig        = errors.New("invalid physics server configuration")
	ErrListenerFailed       = errors.New("failed to listen for viewers")
)
