// Package config loads and validates the gordo-controller process
// configuration from environment variables, per spec.md §6.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// WorkflowGeneratorEnvPrefix is captured verbatim from the process
// environment and forwarded into every deploy job's environment.
const WorkflowGeneratorEnvPrefix = "WORKFLOW_GENERATOR_"

// Config is the validated process configuration consumed by the
// deploy-job builder (pkg/deployjob); cmd/gordo-controller also reads
// ServerHost/ServerPort from it to build the HTTP server's address.
type Config struct {
	DeployImage      string
	DeployRepository string
	DockerRegistry   string

	ServerHost string
	ServerPort int

	DefaultDeployEnvironment map[string]string
	ResourcesLabels          map[string]string

	DeployJobROFS bool

	ArgoServiceAccount string
	ArgoVersionNumber   string

	// WorkflowGeneratorEnv holds every WORKFLOW_GENERATOR_* environment
	// variable found at startup, keyed by its full name, in the order
	// os.Environ() returned them.
	WorkflowGeneratorEnv []EnvVar
}

// EnvVar is a name/value pair, used to preserve insertion order where the
// spec requires it (spec.md §4.2).
type EnvVar struct {
	Name  string
	Value string
}

// Load reads and validates the process configuration from the current
// process environment.
func Load() (*Config, error) {
	return FromEnv(os.Environ())
}

// FromEnv reads and validates the process configuration from the given
// environ-style slice. It never panics; callers treat a non-nil error as
// fatal per spec.md §7 (config errors are the one class that is fatal at
// startup).
func FromEnv(environ []string) (*Config, error) {
	lookup := make(map[string]string, len(environ))
	var generatorEnv []EnvVar
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		lookup[name] = value
		if strings.HasPrefix(name, WorkflowGeneratorEnvPrefix) {
			generatorEnv = append(generatorEnv, EnvVar{Name: name, Value: value})
		}
	}

	cfg := &Config{
		DeployImage:          lookup["DEPLOY_IMAGE"],
		DeployRepository:     lookup["DEPLOY_REPOSITORY"],
		DockerRegistry:       lookup["DOCKER_REGISTRY"],
		ServerHost:           orDefault(lookup["SERVER_HOST"], "0.0.0.0"),
		ArgoServiceAccount:   lookup["ARGO_SERVICE_ACCOUNT"],
		ArgoVersionNumber:    lookup["ARGO_VERSION_NUMBER"],
		WorkflowGeneratorEnv: generatorEnv,
	}

	port, err := parsePort(lookup["SERVER_PORT"])
	if err != nil {
		return nil, err
	}
	cfg.ServerPort = port

	if cfg.DeployJobROFS, err = parseOptionalBool(lookup["DEPLOY_JOB_RO_FS"]); err != nil {
		return nil, fmt.Errorf("DEPLOY_JOB_RO_FS: %w", err)
	}

	if cfg.DefaultDeployEnvironment, err = parseOptionalJSONMap(lookup["DEFAULT_DEPLOY_ENVIRONMENT"]); err != nil {
		return nil, fmt.Errorf("DEFAULT_DEPLOY_ENVIRONMENT: %w", err)
	}
	if cfg.ResourcesLabels, err = parseOptionalJSONMap(lookup["RESOURCES_LABELS"]); err != nil {
		return nil, fmt.Errorf("RESOURCES_LABELS: %w", err)
	}

	if errs := validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs.ToAggregate())
	}
	return cfg, nil
}

// validate checks required fields and value ranges, mirroring the
// field.ErrorList pattern of sigs.k8s.io/controller-runtime-based
// configuration validation.
func validate(cfg *Config) field.ErrorList {
	var allErrs field.ErrorList
	if cfg.DeployImage == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("DEPLOY_IMAGE"), "must be set"))
	}
	if cfg.DockerRegistry == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("DOCKER_REGISTRY"), "must be set"))
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("SERVER_PORT"), cfg.ServerPort, "must be between 1 and 65535"))
	}
	return allErrs
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parsePort(v string) (int, error) {
	if v == "" {
		return 8888, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("SERVER_PORT: %w", err)
	}
	return p, nil
}

func parseOptionalBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func parseOptionalJSONMap(v string) (map[string]string, error) {
	if v == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(v), &m); err != nil {
		return nil, err
	}
	return m, nil
}
