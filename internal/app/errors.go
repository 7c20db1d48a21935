package app

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainError is the failure half of every handler result: pure data,
// compared by code, returned across the handler boundary instead of panicked.
// Status is the transport mapping the boundary layer applies.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// notFound covers read-path failures. An absent resource and a resource owned
// by another user are deliberately indistinguishable.
func notFound(message string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

// permissionDenied covers mutate-path failures, with the same
// existence-leakage rationale as notFound.
func permissionDenied(message string) *DomainError {
	return domainError(http.StatusForbidden, "PERMISSION_DENIED", message, nil)
}

// validationError concatenates the rule violations into one message.
func validationError(violations []string) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", strings.Join(violations, "; "), nil)
}

// thirdPartyError covers downstream provider failures. The message stays
// generic so provider internals never reach the caller.
func thirdPartyError(message string) *DomainError {
	return domainError(http.StatusBadGateway, "THIRD_PARTY_ERROR", message, nil)
}

func unauthorized() *DomainError {
	return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
}
