package deployjob

import (
	"encoding/json"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/config"
)

func baseGordo() *equinorv1.Gordo {
	return &equinorv1.Gordo{
		ObjectMeta: metav1.ObjectMeta{
			Name:       "project-a",
			Namespace:  "default",
			UID:        types.UID("abc-123"),
			Generation: 3,
		},
		Spec: equinorv1.GordoSpec{
			DeployVersion: "1.2.3",
		},
	}
}

func baseConfig() *config.Config {
	return &config.Config{
		DeployImage:    "gordo-infrastructure/gordo-deploy",
		DockerRegistry: "docker.io",
	}
}

func TestBuildNameAndOwnerReference(t *testing.T) {
	job, err := Build(baseGordo(), baseConfig(), "1700000000000")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if job.Name != "gordo-dpl-project-a-3" {
		t.Errorf("Name = %q, want gordo-dpl-project-a-3", job.Name)
	}
	if len(job.OwnerReferences) != 1 {
		t.Fatalf("len(OwnerReferences) = %d, want 1", len(job.OwnerReferences))
	}
	ref := job.OwnerReferences[0]
	if ref.APIVersion != "v1" || ref.Kind != "Gordo" || ref.Name != "project-a" || ref.UID != types.UID("abc-123") {
		t.Errorf("unexpected owner reference: %+v", ref)
	}
	if !ptr.Deref(ref.BlockOwnerDeletion, false) || !ptr.Deref(ref.Controller, false) {
		t.Errorf("owner reference should block deletion and be the controller: %+v", ref)
	}
	if job.Labels[equinorv1.DeployJobLabel] != "project-a" {
		t.Errorf("deploy job label = %q, want project-a", job.Labels[equinorv1.DeployJobLabel])
	}
}

func TestBuildImage(t *testing.T) {
	cases := map[string]struct {
		gordo *equinorv1.Gordo
		cfg   *config.Config
		want  string
	}{
		"no repository uses deploy image verbatim": {
			gordo: baseGordo(),
			cfg:   baseConfig(),
			want:  "gordo-infrastructure/gordo-deploy:1.2.3",
		},
		"process repository": {
			gordo: baseGordo(),
			cfg:   &config.Config{DeployImage: "x", DockerRegistry: "docker.io", DeployRepository: "gordo"},
			want:  "docker.io/gordo:1.2.3",
		},
		"per-gordo overrides win": {
			gordo: func() *equinorv1.Gordo {
				g := baseGordo()
				g.Spec.DeployRepository = ptr.To("override-repo")
				g.Spec.DockerRegistry = ptr.To("registry.example.com")
				return g
			}(),
			cfg:  &config.Config{DeployImage: "x", DockerRegistry: "docker.io", DeployRepository: "gordo"},
			want: "registry.example.com/override-repo:1.2.3",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			job, err := Build(tc.gordo, tc.cfg, "rev")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := job.Spec.Template.Spec.Containers[0].Image; got != tc.want {
				t.Errorf("image = %q, want %q", got, tc.want)
			}
		})
	}
}

func envMap(vars []corev1.EnvVar) map[string]string {
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}

func TestBuildEnvFixedSet(t *testing.T) {
	gordo := baseGordo()
	cfg := baseConfig()
	cfg.ResourcesLabels = map[string]string{"team": "asset-imaging"}

	job, err := Build(gordo, cfg, "1700000000000")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	env := envMap(job.Spec.Template.Spec.Containers[0].Env)

	want := map[string]string{
		"GORDO_NAME":                          "project-a",
		"ARGO_SUBMIT":                         "true",
		"WORKFLOW_GENERATOR_PROJECT_NAME":     "project-a",
		"WORKFLOW_GENERATOR_PROJECT_REVISION": "1700000000000",
		"WORKFLOW_GENERATOR_PROJECT_VERSION":  "1700000000000",
		"WORKFLOW_GENERATOR_DOCKER_REGISTRY":  "docker.io",
		"WORKFLOW_GENERATOR_GORDO_VERSION":    "1.2.3",
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("env[%s] = %q, want %q", k, env[k], v)
		}
	}

	var refs []metav1.OwnerReference
	if err := json.Unmarshal([]byte(env["WORKFLOW_GENERATOR_OWNER_REFERENCES"]), &refs); err != nil {
		t.Fatalf("owner references not valid JSON: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "project-a" {
		t.Errorf("unexpected decoded owner references: %+v", refs)
	}

	var labels map[string]string
	if err := json.Unmarshal([]byte(env["WORKFLOW_GENERATOR_RESOURCE_LABELS"]), &labels); err != nil {
		t.Fatalf("resource labels not valid JSON: %v", err)
	}
	if labels["team"] != "asset-imaging" {
		t.Errorf("resource labels = %+v, want team=asset-imaging", labels)
	}
}

func TestBuildEnvOverridePrecedence(t *testing.T) {
	gordo := baseGordo()
	gordo.Spec.DeployEnvironment = map[string]string{
		"GORDO_NAME":                      "overridden-by-spec",
		"WORKFLOW_GENERATOR_PROJECT_NAME": "also-overridden",
	}
	cfg := baseConfig()
	cfg.WorkflowGeneratorEnv = []config.EnvVar{
		{Name: "WORKFLOW_GENERATOR_PROJECT_NAME", Value: "will-be-overridden-by-fixed-set"},
	}

	job, err := Build(gordo, cfg, "rev")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	env := envMap(job.Spec.Template.Spec.Containers[0].Env)

	// gordo.spec.deploy_environment is applied last, so it wins over both
	// the process WorkflowGeneratorEnv and the fixed set.
	if env["GORDO_NAME"] != "overridden-by-spec" {
		t.Errorf("GORDO_NAME = %q, want overridden-by-spec", env["GORDO_NAME"])
	}
	if env["WORKFLOW_GENERATOR_PROJECT_NAME"] != "also-overridden" {
		t.Errorf("WORKFLOW_GENERATOR_PROJECT_NAME = %q, want also-overridden", env["WORKFLOW_GENERATOR_PROJECT_NAME"])
	}

	// each overridden key appears exactly once.
	count := 0
	for _, v := range job.Spec.Template.Spec.Containers[0].Env {
		if v.Name == "GORDO_NAME" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("GORDO_NAME appears %d times, want 1", count)
	}
}

func TestBuildDeployJobROFS(t *testing.T) {
	cfg := baseConfig()
	cfg.DeployJobROFS = true

	job, err := Build(baseGordo(), cfg, "rev")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sc := job.Spec.Template.Spec.Containers[0].SecurityContext
	if sc == nil || !ptr.Deref(sc.ReadOnlyRootFilesystem, false) || !ptr.Deref(sc.RunAsNonRoot, false) {
		t.Fatalf("expected read-only non-root security context, got %+v", sc)
	}
	foundMount := false
	for _, m := range job.Spec.Template.Spec.Containers[0].VolumeMounts {
		if m.Name == "tmp" && m.MountPath == "/tmp" {
			foundMount = true
		}
	}
	if !foundMount {
		t.Error("expected tmp emptyDir mount at /tmp")
	}
}

func TestBuildRestartPolicyAndTTL(t *testing.T) {
	job, err := Build(baseGordo(), baseConfig(), "rev")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if job.Spec.Template.Spec.RestartPolicy != corev1.RestartPolicyNever {
		t.Errorf("RestartPolicy = %q, want Never", job.Spec.Template.Spec.RestartPolicy)
	}
	if ptr.Deref(job.Spec.TTLSecondsAfterFinished, 0) != 604800 {
		t.Errorf("TTLSecondsAfterFinished = %v, want 604800", job.Spec.TTLSecondsAfterFinished)
	}
}
