package animfsm

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the controller
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// A state, flag or trigger name was declared twice
	ErrCodeDuplicateDeclaration
	// A declaration is malformed (empty name, nil animation)
	ErrCodeInvalidDeclaration
	// A transition references a state that was never declared
	ErrCodeUnknownState
	// A flag or trigger name is not part of the declared set
	ErrCodeUnknownIdentifier
	// A transition key is not of the form "from->to"
	ErrCodeInvalidTransitionKey
	// Build was called without any declared state
	ErrCodeNoStates
	// The builder was used after Build
	ErrCodeBuilderSealed
	// Internal bookkeeping no longer matches the declarations
	ErrCodeInvariantViolation
	// An animation play routine failed
	ErrCodePlaybackFailed
)

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "None"
	case ErrCodeDuplicateDeclaration:
		return "DuplicateDeclaration"
	case ErrCodeInvalidDeclaration:
		return "InvalidDeclaration"
	case ErrCodeUnknownState:
		return "UnknownState"
	case ErrCodeUnknownIdentifier:
		return "UnknownIdentifier"
	case ErrCodeInvalidTransitionKey:
		return "InvalidTransitionKey"
	case ErrCodeNoStates:
		return "NoStates"
	case ErrCodeBuilderSealed:
		return "BuilderSealed"
	case ErrCodeInvariantViolation:
		return "InvariantViolation"
	case ErrCodePlaybackFailed:
		return "PlaybackFailed"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// DeclarationError represents builder declaration errors
type DeclarationError struct {
	Code    ErrorCode
	Kind    string
	Name    string
	Message string
}

func (e *DeclarationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("declaration error [%s]: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("declaration error [%s %q]: %s", e.Kind, e.Name, e.Message)
}

// NewDuplicateDeclarationError creates an error for a name declared twice
func NewDuplicateDeclarationError(kind, name string) *DeclarationError {
	return &DeclarationError{
		Code:    ErrCodeDuplicateDeclaration,
		Kind:    kind,
		Name:    name,
		Message: fmt.Sprintf("%s '%s' already declared", kind, name),
	}
}

// NewInvalidDeclarationError creates an error for a malformed declaration
func NewInvalidDeclarationError(kind, name, reason string) *DeclarationError {
	return &DeclarationError{
		Code:    ErrCodeInvalidDeclaration,
		Kind:    kind,
		Name:    name,
		Message: reason,
	}
}

// NewNoStatesError creates the error returned when building an empty machine
func NewNoStatesError() *DeclarationError {
	return &DeclarationError{
		Code:    ErrCodeNoStates,
		Kind:    "controller",
		Message: "controller requires at least one state",
	}
}

// NewBuilderSealedError creates the error recorded when a built builder is reused
func NewBuilderSealedError(operation string) *DeclarationError {
	return &DeclarationError{
		Code:    ErrCodeBuilderSealed,
		Kind:    "builder",
		Message: fmt.Sprintf("%s called after Build", operation),
	}
}

// TransitionError represents transition declaration errors
type TransitionError struct {
	Code   ErrorCode
	Key    string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s]: %s", e.Key, e.Reason)
}

// NewUnknownStateError creates an error for a transition endpoint that was never declared
func NewUnknownStateError(from, to, state string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeUnknownState,
		Key:    transitionKey(from, to),
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("state '%s' not declared", state),
	}
}

// NewInvalidTransitionKeyError creates an error for a key not shaped "from->to"
func NewInvalidTransitionKeyError(key string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeInvalidTransitionKey,
		Key:    key,
		Reason: fmt.Sprintf("expected \"from%sto\"", transitionSeparator),
	}
}

// NewDuplicateTransitionError creates an error for a repeated (from, to) pair
func NewDuplicateTransitionError(from, to string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeDuplicateDeclaration,
		Key:    transitionKey(from, to),
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("transition \"%s -> %s\" already declared", from, to),
	}
}

// IdentifierError is returned when a flag or trigger name is not declared
type IdentifierError struct {
	Kind string
	Name string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// NewUnknownFlagError creates an error for an undeclared flag
func NewUnknownFlagError(name string) *IdentifierError {
	return &IdentifierError{Kind: "flag", Name: name}
}

// NewUnknownTriggerError creates an error for an undeclared trigger
func NewUnknownTriggerError(name string) *IdentifierError {
	return &IdentifierError{Kind: "trigger", Name: name}
}

// InvariantError signals that controller bookkeeping is inconsistent
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// PlaybackError wraps a failure returned by an animation play routine
type PlaybackError struct {
	Animation   string
	State       string
	OriginalErr error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("animation '%s' failed in state '%s': %v", e.Animation, e.State, e.OriginalErr)
}

func (e *PlaybackError) Unwrap() error {
	return e.OriginalErr
}

// IsDeclarationError checks if an error is a DeclarationError
func IsDeclarationError(err error) bool {
	var target *DeclarationError
	return errors.As(err, &target)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// IsIdentifierError checks if an error is an IdentifierError
func IsIdentifierError(err error) bool {
	var target *IdentifierError
	return errors.As(err, &target)
}

// IsInvariantError checks if an error is an InvariantError
func IsInvariantError(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}

// IsPlaybackError checks if an error is a PlaybackError
func IsPlaybackError(err error) bool {
	var target *PlaybackError
	return errors.As(err, &target)
}

// HasErrorCode reports whether err, or any error joined into it, carries code
func HasErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return code == ErrCodeNone
	}
	if GetErrorCode(err) == code {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if HasErrorCode(e, code) {
				return true
			}
		}
	}
	return false
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		declErr  *DeclarationError
		transErr *TransitionError
		identErr *IdentifierError
		invErr   *InvariantError
		playErr  *PlaybackError
	)
	switch {
	case errors.As(err, &declErr):
		return declErr.Code
	case errors.As(err, &transErr):
		return transErr.Code
	case errors.As(err, &identErr):
		return ErrCodeUnknownIdentifier
	case errors.As(err, &invErr):
		return ErrCodeInvariantViolation
	case errors.As(err, &playErr):
		return ErrCodePlaybackFailed
	default:
		return ErrCodeNone
	}
}
