package v1

const (
	// LabelNamespace is the common prefix for every Gordo application label.
	LabelNamespace = "applications.gordo.equinor.com"

	// LabelProjectName identifies the owning Gordo project.
	LabelProjectName = LabelNamespace + "/project-name"

	// LabelProjectRevision is the millisecond timestamp minted when a Gordo's
	// deploy job was created. It is the authoritative revision label.
	LabelProjectRevision = LabelNamespace + "/project-revision"

	// LabelProjectVersion is a legacy alias of LabelProjectRevision, kept for
	// backward compatibility with Models and deploy jobs produced by older
	// workflow-generator images. Readers prefer LabelProjectRevision when
	// both are present.
	LabelProjectVersion = LabelNamespace + "/project-version"

	// LabelModelName identifies the model a Model/Pod belongs to.
	LabelModelName = LabelNamespace + "/model-name"

	// LabelProjectWorkflow is an optional tie-break label distinguishing
	// multiple workflows submitted for the same project-name/project-revision.
	LabelProjectWorkflow = LabelNamespace + "/project-workflow"

	// DeployJobLabel is the only label authoritative for "is this Job ours"
	// from the perspective of a Gordo's deploy job lifecycle.
	DeployJobLabel = "gordoProjectName"

	// LabelManagedBy marks every object this controller creates.
	LabelManagedBy      = "app.kubernetes.io/managed-by"
	LabelManagedByValue = "gordo-controller"
)

// ProjectRevision returns the effective project-revision value of a label
// set, preferring LabelProjectRevision and falling back to the legacy
// LabelProjectVersion.
func ProjectRevision(labels map[string]string) (string, bool) {
	if v, ok := labels[LabelProjectRevision]; ok {
		return v, true
	}
	v, ok := labels[LabelProjectVersion]
	return v, ok
}
