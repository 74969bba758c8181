package v1

import (
	"encoding/json"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=gd

// Gordo is a project-level custom resource bundling a multi-model
// configuration. Its .status is populated exclusively by this controller.
type Gordo struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   GordoSpec    `json:"spec"`
	Status *GordoStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// GordoList is a list of Gordo resources.
type GordoList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Gordo `json:"items"`
}

// GordoSpec is the user-authored desired state of a Gordo project.
type GordoSpec struct {
	// DeployVersion is the semver tag used to build the deploy image.
	DeployVersion string `json:"deploy-version"`

	// DeployEnvironment is forwarded verbatim into the deploy job's
	// container environment, applied last so it can override every other
	// computed value.
	DeployEnvironment map[string]string `json:"deploy-environment,omitempty"`

	// DeployRepository overrides the process-wide default deploy
	// repository for this Gordo only.
	DeployRepository *string `json:"deploy-repository,omitempty"`

	// DockerRegistry overrides the process-wide default docker registry
	// for this Gordo only.
	DockerRegistry *string `json:"docker-registry,omitempty"`

	// DebugShowWorkflow asks the workflow generator to print, rather than
	// submit, the Argo workflow it would otherwise create.
	DebugShowWorkflow bool `json:"debug-show-workflow,omitempty"`

	// Config carries the ordered list of model definitions for this project.
	Config GordoConfig `json:"config"`
}

// GordoConfig wraps the ordered sequence of opaque model definitions. It
// accepts the key "models" or the legacy alias "machines", preferring
// "models" when both are present.
type GordoConfig struct {
	Models []json.RawMessage `json:"-"`
}

type gordoConfigAlias struct {
	Models   []json.RawMessage `json:"models,omitempty"`
	Machines []json.RawMessage `json:"machines,omitempty"`
}

// UnmarshalJSON implements the models/machines alias described in
// SPEC_FULL.md §5.
func (c *GordoConfig) UnmarshalJSON(data []byte) error {
	var alias gordoConfigAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if alias.Models != nil {
		c.Models = alias.Models
		return nil
	}
	c.Models = alias.Machines
	return nil
}

// MarshalJSON always emits the "models" key.
func (c GordoConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(gordoConfigAlias{Models: c.Models})
}

// GordoSubmissionStatusType is a closed enumeration, left open for future
// variants by being a tagged struct rather than a bare string.
type GordoSubmissionStatusType string

const (
	// GordoSubmissionSubmitted is the only submission-status variant today.
	GordoSubmissionSubmitted GordoSubmissionStatusType = "Submitted"
)

// GordoSubmissionStatus is a tagged variant: Submitted carries the
// generation the currently-running deploy job was created for, or nil if
// that generation was never observed (should not normally occur once a
// job has been submitted).
type GordoSubmissionStatus struct {
	Type       GordoSubmissionStatusType `json:"type"`
	Generation *int64                    `json:"generation,omitempty"`
}

// GordoStatus is populated and mutated exclusively by this controller.
type GordoStatus struct {
	// NModels is len(spec.config.models) as of the last reconcile.
	NModels int `json:"n-models"`

	// NModelsBuilt is the count of Models owned by this Gordo, at the
	// current ProjectRevision, whose phase is Succeeded.
	NModelsBuilt int `json:"n-models-built"`

	// SubmissionStatus records the generation the current deploy job was
	// launched for.
	SubmissionStatus GordoSubmissionStatus `json:"submission-status"`

	// ProjectRevision is the millisecond timestamp minted at deploy-job
	// creation time, in effect for the currently-submitted generation.
	ProjectRevision string `json:"project-revision,omitempty"`
}

// NeedsRedeploy reports whether this Gordo's deploy job must be
// (re)submitted for observedGeneration, per spec.md §4.4.
func (s *GordoStatus) NeedsRedeploy(observedGeneration int64) bool {
	if s == nil {
		return true
	}
	return s.SubmissionStatus.Generation == nil || *s.SubmissionStatus.Generation != observedGeneration
}
