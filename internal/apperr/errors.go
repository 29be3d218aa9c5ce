// Package apperr defines the sentinel errors shared across the pipeline.
//
// The taxonomy mirrors the per-stage failure policy: ErrInvalidInput is the
// caller's fault and never retried, ErrUpstream marks a provider failure,
// ErrStorage marks a durability failure and is always fatal, ErrInternal
// marks an assembly or validation inconsistency that should not occur on
// valid input.
package apperr

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream provider error")
	ErrStorage      = errors.New("storage error")
	ErrInternal     = errors.New("internal error")
	ErrNotFound     = errors.New("not found")
	ErrLinkExpired  = errors.New("link expired")
)
