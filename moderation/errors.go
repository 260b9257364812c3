package moderation

import "errors"

var (
	// ErrEnforcementFailed wraps any error returned by the platform when an action is rejected.
	ErrEnforcementFailed = errors.New("moderation action failed")
	// ErrNoTarget is returned when an action is issued without a target.
	ErrNoTarget = errors.New("no target specified")
)
