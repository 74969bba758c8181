// Package gordoerrors gives the error taxonomy of spec.md §7 concrete Go
// types so call sites can classify a failure without string matching.
package gordoerrors

import (
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// MissingKeyError reports that a required field was absent on a resource
// the controller was asked to act on. Callers skip the item; it is never
// fatal to the reconcile.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %s", e.Key)
}

// NewMissingKeyError reports that key is absent on the resource a caller
// was asked to act on.
func NewMissingKeyError(key string) *MissingKeyError {
	return &MissingKeyError{Key: key}
}

// KubeAPIError wraps a transport or server-side Kubernetes API failure.
// Category classifies Err the way original_source/src/metrics.rs's
// kube_error_name does, for use as the kube_errors{kube_name=...} metric
// label.
type KubeAPIError struct {
	Action   string
	Category string
	Err      error
}

func (e *KubeAPIError) Error() string {
	return fmt.Sprintf("kube api error during %s (%s): %v", e.Action, e.Category, e.Err)
}

func (e *KubeAPIError) Unwrap() error {
	return e.Err
}

// NewKubeAPIError classifies err using apierrors and wraps it.
func NewKubeAPIError(action string, err error) *KubeAPIError {
	return &KubeAPIError{Action: action, Category: classify(err), Err: err}
}

func classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case apierrors.IsNotFound(err):
		return "not_found"
	case apierrors.IsConflict(err):
		return "conflict"
	case apierrors.IsAlreadyExists(err):
		return "already_exists"
	case apierrors.IsForbidden(err):
		return "forbidden"
	case apierrors.IsInvalid(err):
		return "invalid"
	case apierrors.IsTimeout(err):
		return "timeout"
	case apierrors.IsServerTimeout(err):
		return "server_timeout"
	case apierrors.IsTooManyRequests(err):
		return "too_many_requests"
	case apierrors.IsInternalError(err):
		return "internal"
	default:
		return "api"
	}
}

// ParseWarningError reports that a pod's terminated-status message could
// not be parsed as the expected structured-error JSON shape. It is
// counted and logged, never propagated as a reconcile failure.
type ParseWarningError struct {
	Err error
}

func (e *ParseWarningError) Error() string {
	return fmt.Sprintf("failed to parse terminated message: %v", e.Err)
}

func (e *ParseWarningError) Unwrap() error {
	return e.Err
}

// NewParseWarningError wraps a terminated-message unmarshal failure.
func NewParseWarningError(err error) *ParseWarningError {
	return &ParseWarningError{Err: err}
}
