// Package descriptor models the desired end-state of the stock ETL workload as
// an immutable typed record, and serializes it to and from the Kubernetes
// manifest format. The record declares one container, a fixed replica count,
// and the environment bindings pointing the ETL application at its MongoDB and
// MinIO endpoints. It carries no behavior of its own: the cluster control
// plane interprets the rendered manifest.
package descriptor

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PullPolicy mirrors the image pull policies understood by the kubelet.
type PullPolicy string

const (
	PullAlways       PullPolicy = "Always"
	PullIfNotPresent PullPolicy = "IfNotPresent"
	PullNever        PullPolicy = "Never"
)

func (policy PullPolicy) Valid() bool {
	switch policy {
	case PullAlways, PullIfNotPresent, PullNever:
		return true
	}
	return false
}

// EnvVar is a single environment binding exposed to the ETL container.
// Bindings flagged secret hold credentials and are rendered as references into
// a credentials Secret unless inline rendering is requested.
type EnvVar struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Secret bool   `yaml:"secret,omitempty"`
}

// DeploymentSpec is the deployment descriptor. Labels double as the selector
// match labels and the pod template labels, so the selector invariant holds by
// construction.
type DeploymentSpec struct {
	Name          string            `yaml:"name"`
	Namespace     string            `yaml:"namespace"`
	Labels        map[string]string `yaml:"labels"`
	Replicas      int32             `yaml:"replicas"`
	Image         string            `yaml:"image"`
	PullPolicy    PullPolicy        `yaml:"pullPolicy"`
	ContainerPort int32             `yaml:"containerPort"`
	Env           []EnvVar          `yaml:"env"`
}

// EnvValue returns the declared value for an environment key.
func (spec DeploymentSpec) EnvValue(name string) (string, bool) {
	for _, env := range spec.Env {
		if env.Name == name {
			return env.Value, true
		}
	}
	return "", false
}

// SecretName is the name of the credentials Secret emitted when secret-flagged
// bindings are not rendered inline.
func (spec DeploymentSpec) SecretName() string { return spec.Name + "-credentials" }

func (spec DeploymentSpec) hasSecretEnv() bool {
	for _, env := range spec.Env {
		if env.Secret {
			return true
		}
	}
	return false
}

// Load overlays a values document over the base descriptor. Keys absent from
// the document keep their base values; env is replaced wholesale when present.
func Load(base DeploymentSpec, r io.Reader) (DeploymentSpec, error) {
	if err := yaml.NewDecoder(r).Decode(&base); err != nil && err != io.EOF {
		return base, fmt.Errorf("failed to decode values: %w", err)
	}
	return base, nil
}

func LoadFile(base DeploymentSpec, path string) (DeploymentSpec, error) {
	file, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("failed to open values file: %w", err)
	}
	defer file.Close()

	spec, err := Load(base, file)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}
