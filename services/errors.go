package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/edulink-ug/edulink/store"
)

// Error taxonomy shared by every lifecycle operation. Callers match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrAnswerNotFound   = fmt.Errorf("answer %w", ErrNotFound)
	ErrReportNotFound   = fmt.Errorf("report %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("study session %w", ErrNotFound)
	ErrContentNotFound  = fmt.Errorf("reported content %w", ErrNotFound)

	ErrForbidden        = errors.New("forbidden")
	ErrContentRejected  = errors.New("content contains prohibited language")
	ErrRateLimited      = errors.New("too many requests, please slow down")
	ErrAccountSuspended = errors.New("account suspended")
	ErrAccountBanned    = errors.New("account banned")
	ErrValidation       = errors.New("validation failed")

	ErrConflict           = errors.New("conflict")
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrSessionFull        = fmt.Errorf("study session is full: %w", ErrConflict)
	ErrSessionEnded       = fmt.Errorf("study session has ended: %w", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError lists offending fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// mapNotFound swaps store.ErrNotFound for the entity-specific error.
func mapNotFound(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
