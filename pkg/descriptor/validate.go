package descriptor

import (
	"fmt"

	"github.com/davidmdm/x/xerr"
	appsv1 "k8s.io/api/apps/v1"
)

// Validate checks the structural invariants the API server would reject the
// rendered manifest over. All violations are reported at once.
func (spec DeploymentSpec) Validate() error {
	var errs []error

	if spec.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if spec.Namespace == "" {
		errs = append(errs, fmt.Errorf("namespace is required"))
	}
	if len(spec.Labels) == 0 {
		errs = append(errs, fmt.Errorf("at least one label is required for selector matching"))
	}
	if spec.Replicas < 0 {
		errs = append(errs, fmt.Errorf("replicas must be non-negative: got %d", spec.Replicas))
	}
	if spec.Image == "" {
		errs = append(errs, fmt.Errorf("image is required"))
	}
	if !spec.PullPolicy.Valid() {
		errs = append(errs, fmt.Errorf("pull policy must be one of Always, IfNotPresent or Never: got %q", spec.PullPolicy))
	}
	if spec.ContainerPort < 1 || spec.ContainerPort > 65535 {
		errs = append(errs, fmt.Errorf("container port must be within 1-65535: got %d", spec.ContainerPort))
	}

	seen := make(map[string]struct{}, len(spec.Env))
	for _, env := range spec.Env {
		if env.Name == "" {
			errs = append(errs, fmt.Errorf("env keys cannot be empty"))
			continue
		}
		if _, ok := seen[env.Name]; ok {
			errs = append(errs, fmt.Errorf("duplicate env key %q", env.Name))
		}
		seen[env.Name] = struct{}{}
	}

	return xerr.MultiErrOrderedFrom("invalid deployment descriptor", errs...)
}

// ValidateManifest checks rules the control plane enforces at admission time
// against an arbitrary deployment manifest: the pod template labels must be a
// superset of the selector labels, and the workload holds a single container.
func ValidateManifest(deployment *appsv1.Deployment) error {
	var errs []error

	if deployment.Name == "" {
		errs = append(errs, fmt.Errorf("metadata.name is required"))
	}

	selector := deployment.Spec.Selector
	if selector == nil || len(selector.MatchLabels) == 0 {
		errs = append(errs, fmt.Errorf("selector match labels are required"))
	} else {
		template := deployment.Spec.Template.Labels
		for key, value := range selector.MatchLabels {
			if actual, ok := template[key]; !ok || actual != value {
				errs = append(errs, fmt.Errorf("selector label %s=%s is not present on the pod template", key, value))
			}
		}
	}

	if replicas := deployment.Spec.Replicas; replicas != nil && *replicas < 0 {
		errs = append(errs, fmt.Errorf("replicas must be non-negative: got %d", *replicas))
	}

	if count := len(deployment.Spec.Template.Spec.Containers); count != 1 {
		errs = append(errs, fmt.Errorf("expected exactly one container: got %d", count))
	}

	return xerr.MultiErrOrderedFrom("invalid manifest", errs...)
}
