package statemachine

import "errors"

// ErrTransitionNotAllowed is returned when an event is fired from a state that does not accept it
var ErrTransitionNotAllowed = errors.New("transition not allowed")
