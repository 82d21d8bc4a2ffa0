// Package apperr defines the error kinds surfaced by the wagering engine.
//
// Every business-rule failure is an *Error carrying a Kind for programmatic
// handling and a human-readable message for display.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindAccountNotFound   Kind = "account_not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindPetNotFound       Kind = "pet_not_found"
	KindPetIneligible     Kind = "pet_ineligible"
	KindLobbyNotFound     Kind = "lobby_not_found"
	KindLobbyUnavailable  Kind = "lobby_unavailable"
	KindSelfJoinForbidden Kind = "self_join_forbidden"
	KindDuplicateLobby    Kind = "duplicate_lobby"
	KindNotLobbyOwner     Kind = "not_lobby_owner"
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}

	return e.Msg
}

// Is reports a match on Kind only, so the sentinels below match any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrAccountNotFound   = &Error{Kind: KindAccountNotFound}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrPetNotFound       = &Error{Kind: KindPetNotFound}
	ErrPetIneligible     = &Error{Kind: KindPetIneligible}
	ErrLobbyNotFound     = &Error{Kind: KindLobbyNotFound}
	ErrLobbyUnavailable  = &Error{Kind: KindLobbyUnavailable}
	ErrSelfJoinForbidden = &Error{Kind: KindSelfJoinForbidden}
	ErrDuplicateLobby    = &Error{Kind: KindDuplicateLobby}
	ErrNotLobbyOwner     = &Error{Kind: KindNotLobbyOwner}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

func InsufficientFunds(need int64) *Error {
	return New(KindInsufficientFunds, "Insufficient Stardust! You need %d coins.", need)
}
