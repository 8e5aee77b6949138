package pkgtxctx

import (
	"errors"
	"strings"
	"time"

	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
)

var (
	// ErrBlankCorrelationID is returned when constructing a Context with an
	// empty or whitespace-only correlation ID.
	ErrBlankCorrelationID = errors.New("correlation id cannot be blank")
	// ErrBlankServiceID is returned when constructing a Context with an empty
	// or whitespace-only service ID.
	ErrBlankServiceID = errors.New("service id cannot be blank")
	// ErrBlankAnnotationKey is returned by WithAnnotation for a blank key.
	ErrBlankAnnotationKey = errors.New("annotation key cannot be blank")
)

// Context describes one logical operation: an inbound request, a job, or a
// background task. It is an immutable value; share it freely.
type Context struct {
	correlationID string
	userID        string
	serviceID     string
	createdAt     time.Time
	annotations   map[string]string
}

// New creates a Context with a freshly generated correlation ID.
func New(serviceID string) (Context, error) {
	return Of(pkgtxid.Generate(), serviceID)
}

// Of creates a Context with a caller-supplied correlation ID, typically one
// extracted from an inbound request header.
func Of(correlationID, serviceID string) (Context, error) {
	if strings.TrimSpace(correlationID) == "" {
		return Context{}, ErrBlankCorrelationID
	}
	if strings.TrimSpace(serviceID) == "" {
		return Context{}, ErrBlankServiceID
	}

	return Context{
		correlationID: correlationID,
		serviceID:     serviceID,
		createdAt:     time.Now(),
	}, nil
}

// CorrelationID returns the correlation ID. Never empty for a valid Context.
func (c Context) CorrelationID() string {
	return c.correlationID
}

// ServiceID returns the owning service's identifier.
func (c Context) ServiceID() string {
	return c.serviceID
}

// UserID returns the user identifier and whether one was set.
func (c Context) UserID() (string, bool) {
	return c.userID, c.userID != ""
}

// CreatedAt returns when the Context was constructed.
func (c Context) CreatedAt() time.Time {
	return c.createdAt
}

// Annotation returns the annotation stored under key, if any.
func (c Context) Annotation(key string) (string, bool) {
	v, ok := c.annotations[key]
	return v, ok
}

// Annotations returns a copy of all annotations.
func (c Context) Annotations() map[string]string {
	out := make(map[string]string, len(c.annotations))
	for k, v := range c.annotations {
		out[k] = v
	}
	return out
}

// WithUser returns a copy of the Context with the user ID set.
func (c Context) WithUser(userID string) Context {
	derived := c
	derived.userID = userID
	return derived
}

// WithAnnotation returns a copy of the Context with one annotation added or
// replaced. The receiver's annotation map is never mutated.
func (c Context) WithAnnotation(key, value string) (Context, error) {
	if strings.TrimSpace(key) == "" {
		return Context{}, ErrBlankAnnotationKey
	}

	annotations := make(map[string]string, len(c.annotations)+1)
	for k, v := range c.annotations {
		annotations[k] = v
	}
	annotations[key] = value

	derived := c
	derived.annotations = annotations
	return derived, nil
}
