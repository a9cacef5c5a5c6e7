// Copyright (C) 2025 zajel-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package zerr defines the error taxonomy shared by the broadcast-channel
// and pairwise-session cores. Every primitive reports one of these kinds;
// callers distinguish behavior with errors.Is against the sentinels below.
package zerr

import (
	"errors"
	"fmt"
)

// Kind is one of the fixed error categories every core operation reports.
type Kind string

const (
	BadEncoding    Kind = "bad_encoding"
	BadKey         Kind = "bad_key"
	BadSignature   Kind = "bad_signature"
	AuthFailed     Kind = "auth_failed"
	UnknownAuthor  Kind = "unknown_author"
	Malformed      Kind = "malformed"
	Replay         Kind = "replay"
	SessionExpired Kind = "session_expired"
	NotAuthorised  Kind = "not_authorised"
	QueueFull      Kind = "queue_full"
	RoleMismatch   Kind = "role_mismatch"
	PolicyViolation Kind = "policy_violation"
	NodeUnavailable Kind = "node_unavailable"
	Internal       Kind = "internal"
)

// Error wraps an underlying cause with a taxonomy Kind and the operation
// that produced it, e.g. "chunk.verify_and_reassemble: malformed: duplicate index".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, zerr.Malformed)-style sentinel comparisons work
// against a *Error by comparing kinds, since Kind values are not errors
// themselves but are exposed as sentinels below for ergonomic matching.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs a *Error for op/kind with an optional wrapped cause.
func New(op string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinels for the common zero-argument cases, so call sites can write
// `return zerr.ErrAuthFailed` without constructing an *Error by hand when
// there is no operation-specific context to attach.
var (
	ErrBadEncoding     = &Error{Kind: BadEncoding}
	ErrBadKey          = &Error{Kind: BadKey}
	ErrBadSignature    = &Error{Kind: BadSignature}
	ErrAuthFailed      = &Error{Kind: AuthFailed}
	ErrUnknownAuthor   = &Error{Kind: UnknownAuthor}
	ErrMalformed       = &Error{Kind: Malformed}
	ErrReplay          = &Error{Kind: Replay}
	ErrSessionExpired  = &Error{Kind: SessionExpired}
	ErrNotAuthorised   = &Error{Kind: NotAuthorised}
	ErrQueueFull       = &Error{Kind: QueueFull}
	ErrRoleMismatch    = &Error{Kind: RoleMismatch}
	ErrPolicyViolation = &Error{Kind: PolicyViolation}
	ErrNodeUnavailable = &Error{Kind: NodeUnavailable}
	ErrInternal        = &Error{Kind: Internal}
)

// Of reports the Kind of err, or Internal if err does not carry one.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
