package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrInvalidState marks a call made with a violated precondition.
	ErrInvalidState = errors.New("invalid state")
	// ErrContentMismatch marks an internal invariant violation while processing text.
	ErrContentMismatch = errors.New("content mismatch")
)

// ServiceKind classifies a remote failure.
type ServiceKind string

const (
	KindAuth        ServiceKind = "auth"
	KindRateLimit   ServiceKind = "rate_limit"
	KindTimeout     ServiceKind = "timeout"
	KindNetwork     ServiceKind = "network"
	KindBadResponse ServiceKind = "bad_response"
	KindUnavailable ServiceKind = "unavailable"
)

// ServiceError is a failed call to a remote collaborator.
type ServiceError struct {
	Service string
	Kind    ServiceKind
	Status  int
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Service, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError tags err with the failing service.
func NewServiceError(service string, kind ServiceKind, err error) *ServiceError {
	return &ServiceError{Service: service, Kind: kind, Err: err}
}

// StatusError builds a ServiceError from a non-2xx HTTP status.
func StatusError(service string, status int, body string) *ServiceError {
	msg := http.StatusText(status)
	if body != "" {
		msg = body
	}
	return &ServiceError{Service: service, Kind: KindForStatus(status), Status: status, Err: errors.New(msg)}
}

// TransportError wraps an error returned before any HTTP status was received.
func TransportError(service string, err error) *ServiceError {
	return &ServiceError{Service: service, Kind: KindForTransport(err), Err: err}
}

// KindForStatus maps an HTTP status to a ServiceKind.
func KindForStatus(status int) ServiceKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	}
	return KindBadResponse
}

// KindForTransport maps a transport error to timeout or network.
func KindForTransport(err error) ServiceKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ServiceKind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}
