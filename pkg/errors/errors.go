package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency, order already being placed)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails. Fields is keyed by form field
// (name, phone, city, courier, ...).
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			return field + ": " + msg
		}
	}
	return "validation failed"
}

// ErrInvalidSelection is returned when a courier selection does not fit the current mode
type ErrInvalidSelection struct {
	Message string
}

func (e *ErrInvalidSelection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid selection"
}

// InventoryIssue is one product the marketplace could not fulfil in full
type InventoryIssue struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// ErrUpstream wraps a non-2xx answer from the marketplace API.
// Message is the backend-provided text, surfaced verbatim.
type ErrUpstream struct {
	StatusCode int
	Message    string
	Issues     []InventoryIssue
}

func (e *ErrUpstream) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("marketplace returned %d", e.StatusCode)
}

// IsInventoryShortage reports whether the upstream error carries per-product stock issues
func (e *ErrUpstream) IsInventoryShortage() bool {
	return len(e.Issues) > 0
}

// MessageOr returns the upstream message, or fallback when the backend sent none
func (e *ErrUpstream) MessageOr(fallback string) string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fallback
}
