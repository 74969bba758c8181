// Package deployjob implements C2: a pure function mapping a Gordo and
// the process configuration to the Kubernetes Job manifest that launches
// its workflow generator, per spec.md §4.2.
package deployjob

import (
	"encoding/json"
	"fmt"
	"sort"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/utils/ptr"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/config"
	"github.com/equinor/gordo-controller/pkg/gordoerrors"
)

const (
	containerName          = "gordo-deploy"
	ttlSecondsAfterFinished = int32(604800)
)

// Build returns the deploy Job manifest for gordo, using revision as the
// freshly-minted project-revision (callers mint it; the builder is
// deterministic given its inputs, per spec.md §4.2's final paragraph).
func Build(gordo *equinorv1.Gordo, cfg *config.Config, revision string) (*batchv1.Job, error) {
	if gordo.Name == "" {
		return nil, gordoerrors.NewMissingKeyError("metadata.name")
	}
	if gordo.UID == "" {
		return nil, gordoerrors.NewMissingKeyError("metadata.uid")
	}

	ownerRef := metav1.OwnerReference{
		APIVersion:         "v1",
		Kind:                "Gordo",
		Name:                gordo.Name,
		UID:                 gordo.UID,
		BlockOwnerDeletion:  ptr.To(true),
		Controller:          ptr.To(true),
	}

	name := deployJobName(fmt.Sprintf("%s-%d", gordo.Name, gordo.Generation))

	labels := map[string]string{
		equinorv1.DeployJobLabel: gordo.Name,
		equinorv1.LabelManagedBy: equinorv1.LabelManagedByValue,
	}
	for k, v := range cfg.ResourcesLabels {
		labels[k] = v
	}

	env, err := buildEnv(gordo, cfg, revision, ownerRef)
	if err != nil {
		return nil, fmt.Errorf("building deploy job environment: %w", err)
	}

	container := corev1.Container{
		Name:            containerName,
		Image:           deployImage(gordo, cfg),
		Command:         []string{"bash", "./run_workflow_and_argo.sh"},
		ImagePullPolicy: corev1.PullAlways,
		Env:             env,
		Resources: corev1.ResourceRequirements{
			Requests: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("250m"),
				corev1.ResourceMemory: resource.MustParse("500Mi"),
			},
			Limits: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("2000m"),
				corev1.ResourceMemory: resource.MustParse("1000Mi"),
			},
		},
	}

	podSpec := corev1.PodSpec{
		RestartPolicy: corev1.RestartPolicyNever,
		Containers:    []corev1.Container{container},
	}

	if cfg.DeployJobROFS {
		podSpec.Containers[0].SecurityContext = &corev1.SecurityContext{
			ReadOnlyRootFilesystem: ptr.To(true),
			RunAsNonRoot:           ptr.To(true),
		}
		podSpec.Containers[0].VolumeMounts = []corev1.VolumeMount{
			{Name: "tmp", MountPath: "/tmp"},
		}
		podSpec.Volumes = []corev1.Volume{
			{Name: "tmp", VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}}},
		}
	}

	job := &batchv1.Job{
		TypeMeta: metav1.TypeMeta{APIVersion: "batch/v1", Kind: "Job"},
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       gordo.Namespace,
			Labels:          labels,
			OwnerReferences: []metav1.OwnerReference{ownerRef},
		},
		Spec: batchv1.JobSpec{
			TTLSecondsAfterFinished: ptr.To(ttlSecondsAfterFinished),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       podSpec,
			},
		},
	}
	return job, nil
}

func deployImage(gordo *equinorv1.Gordo, cfg *config.Config) string {
	registry := effectiveRegistry(gordo, cfg)
	repository := cfg.DeployRepository
	if gordo.Spec.DeployRepository != nil {
		repository = *gordo.Spec.DeployRepository
	}

	var base string
	switch {
	case repository != "":
		base = fmt.Sprintf("%s/%s", registry, repository)
	default:
		base = cfg.DeployImage
	}
	return fmt.Sprintf("%s:%s", base, gordo.Spec.DeployVersion)
}

func effectiveRegistry(gordo *equinorv1.Gordo, cfg *config.Config) string {
	if gordo.Spec.DockerRegistry != nil {
		return *gordo.Spec.DockerRegistry
	}
	return cfg.DockerRegistry
}

func buildEnv(gordo *equinorv1.Gordo, cfg *config.Config, revision string, ownerRef metav1.OwnerReference) ([]corev1.EnvVar, error) {
	var env []corev1.EnvVar

	for _, e := range cfg.WorkflowGeneratorEnv {
		upsertEnvVar(&env, corev1.EnvVar{Name: e.Name, Value: e.Value})
	}

	ownerRefJSON, err := json.Marshal([]metav1.OwnerReference{ownerRef})
	if err != nil {
		return nil, fmt.Errorf("encoding owner references: %w", err)
	}

	resourceLabelsJSON := ""
	if len(cfg.ResourcesLabels) > 0 {
		b, err := json.Marshal(cfg.ResourcesLabels)
		if err != nil {
			return nil, fmt.Errorf("encoding resource labels: %w", err)
		}
		resourceLabelsJSON = string(b)
	}

	debugShowWorkflow := ""
	if gordo.Spec.DebugShowWorkflow {
		debugShowWorkflow = "true"
	}

	upsertEnvVars(&env,
		corev1.EnvVar{Name: "GORDO_NAME", Value: gordo.Name},
		corev1.EnvVar{Name: "ARGO_SUBMIT", Value: "true"},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_PROJECT_NAME", Value: gordo.Name},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_OWNER_REFERENCES", Value: string(ownerRefJSON)},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_PROJECT_REVISION", Value: revision},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_PROJECT_VERSION", Value: revision},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_DOCKER_REGISTRY", Value: effectiveRegistry(gordo, cfg)},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_GORDO_VERSION", Value: gordo.Spec.DeployVersion},
		corev1.EnvVar{Name: "WORKFLOW_GENERATOR_RESOURCE_LABELS", Value: resourceLabelsJSON},
		corev1.EnvVar{Name: "DEBUG_SHOW_WORKFLOW", Value: debugShowWorkflow},
	)

	for _, kv := range sortedEntries(cfg.DefaultDeployEnvironment) {
		upsertEnvVar(&env, corev1.EnvVar{Name: kv.Name, Value: kv.Value})
	}

	if cfg.ArgoServiceAccount != "" {
		upsertEnvVar(&env, corev1.EnvVar{Name: "ARGO_SERVICE_ACCOUNT", Value: cfg.ArgoServiceAccount})
	}
	if cfg.ArgoVersionNumber != "" {
		upsertEnvVar(&env, corev1.EnvVar{Name: "ARGO_VERSION_NUMBER", Value: cfg.ArgoVersionNumber})
	}

	for _, kv := range sortedEntries(gordo.Spec.DeployEnvironment) {
		upsertEnvVar(&env, corev1.EnvVar{Name: kv.Name, Value: kv.Value})
	}

	return env, nil
}

func sortedEntries(m map[string]string) []config.EnvVar {
	if len(m) == 0 {
		return nil
	}
	out := make([]config.EnvVar, 0, len(m))
	for k, v := range m {
		out = append(out, config.EnvVar{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
