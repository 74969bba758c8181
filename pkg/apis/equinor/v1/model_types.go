package v1

import (
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=gm

// Model is a per-model custom resource produced by a Gordo's workflow. Its
// status is derived and mutated exclusively by this controller.
type Model struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ModelSpec    `json:"spec"`
	Status *ModelStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ModelList is a list of Model resources.
type ModelList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Model `json:"items"`
}

// ModelSpec is authored by the workflow generator, not by end users.
type ModelSpec struct {
	GordoVersion string          `json:"gordo-version,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
}

// ModelPhase is a flat, closed enumeration (never a hierarchy).
type ModelPhase string

const (
	ModelPhaseUnknown    ModelPhase = "Unknown"
	ModelPhaseInProgress ModelPhase = "InProgress"
	ModelPhaseSucceeded  ModelPhase = "Succeeded"
	ModelPhaseFailed     ModelPhase = "Failed"
)

// IsTerminal reports whether a phase no longer transitions except through
// the revision-invalidation reset in spec.md §4.5.
func (p ModelPhase) IsTerminal() bool {
	return p == ModelPhaseSucceeded || p == ModelPhaseFailed
}

// UnmarshalJSON accepts both the canonical enum names and their
// lowerCamelCase aliases (unknown, inProgress, succeeded, failed).
func (p *ModelPhase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case string(ModelPhaseUnknown), "unknown", "":
		*p = ModelPhaseUnknown
	case string(ModelPhaseInProgress), "inProgress":
		*p = ModelPhaseInProgress
	case string(ModelPhaseSucceeded), "succeeded":
		*p = ModelPhaseSucceeded
	case string(ModelPhaseFailed), "failed":
		*p = ModelPhaseFailed
	default:
		return fmt.Errorf("unrecognized model phase %q", s)
	}
	return nil
}

// ModelStatus is the derived build status of one Model.
type ModelStatus struct {
	Phase ModelPhase `json:"phase"`

	// Code is the exit code of the last-terminated "main" container of a
	// matching failed pod, if one could be found.
	Code *int32 `json:"code,omitempty"`

	ErrorType string `json:"error-type,omitempty"`
	Message   string `json:"message,omitempty"`
	Traceback string `json:"traceback,omitempty"`

	// Revision is the project-revision in effect when this status was
	// first written; used to detect a stale status after a Gordo redeploy.
	Revision string `json:"revision,omitempty"`
}

// DefaultModelStatus returns the zero-value status used both for a Model
// with no status subresource yet, and as the reset target of the revision
// invalidation transition in spec.md §4.5.
func DefaultModelStatus(revision string) *ModelStatus {
	return &ModelStatus{Phase: ModelPhaseUnknown, Revision: revision}
}

// EffectiveStatus returns status if non-nil, or the zero-value Unknown
// status otherwise -- missing status on read is treated as phase=Unknown
// per spec.md §4.1.
func (m *Model) EffectiveStatus() ModelStatus {
	if m.Status == nil {
		return ModelStatus{Phase: ModelPhaseUnknown}
	}
	return *m.Status
}
