package descriptor

import (
	"errors"
	"fmt"
	"io"
	"maps"

	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	kyaml "k8s.io/apimachinery/pkg/util/yaml"
)

// RenderOpts controls how the descriptor is expressed as manifests.
type RenderOpts struct {
	// InlineCredentials renders secret-flagged bindings as literal env values,
	// reproducing the original artifact instead of emitting a credentials
	// Secret referenced via secretKeyRef.
	InlineCredentials bool
}

// Deployment expresses the descriptor as a typed apps/v1 Deployment. The
// selector match labels, the metadata labels and the pod template labels are
// all the descriptor's label set.
func (spec DeploymentSpec) Deployment(opts RenderOpts) *appsv1.Deployment {
	env := make([]corev1.EnvVar, len(spec.Env))
	for i, binding := range spec.Env {
		if binding.Secret && !opts.InlineCredentials {
			env[i] = corev1.EnvVar{
				Name: binding.Name,
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: spec.SecretName()},
						Key:                  binding.Name,
					},
				},
			}
			continue
		}
		env[i] = corev1.EnvVar{Name: binding.Name, Value: binding.Value}
	}

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    maps.Clone(spec.Labels),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr(spec.Replicas),
			Selector: &metav1.LabelSelector{MatchLabels: maps.Clone(spec.Labels)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: maps.Clone(spec.Labels)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:            spec.Name,
							Image:           spec.Image,
							ImagePullPolicy: corev1.PullPolicy(spec.PullPolicy),
							Ports:           []corev1.ContainerPort{{ContainerPort: spec.ContainerPort}},
							Env:             env,
						},
					},
				},
			},
		},
	}
}

// CredentialsSecret holds the secret-flagged bindings. Nil when the descriptor
// declares none.
func (spec DeploymentSpec) CredentialsSecret() *corev1.Secret {
	if !spec.hasSecretEnv() {
		return nil
	}

	data := make(map[string]string)
	for _, env := range spec.Env {
		if env.Secret {
			data[env.Name] = env.Value
		}
	}

	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.SecretName(),
			Namespace: spec.Namespace,
			Labels:    maps.Clone(spec.Labels),
		},
		Type:       corev1.SecretTypeOpaque,
		StringData: data,
	}
}

// Resources is the full manifest set for the descriptor: the deployment, plus
// the credentials Secret when not rendering inline.
func (spec DeploymentSpec) Resources(opts RenderOpts) ([]*unstructured.Unstructured, error) {
	var resources []*unstructured.Unstructured

	if !opts.InlineCredentials {
		if secret := spec.CredentialsSecret(); secret != nil {
			resource, err := toUnstructured(secret)
			if err != nil {
				return nil, fmt.Errorf("failed to convert credentials secret: %w", err)
			}
			resources = append(resources, resource)
		}
	}

	resource, err := toUnstructured(spec.Deployment(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to convert deployment: %w", err)
	}

	return append(resources, resource), nil
}

// FromDeployment parses a deployment manifest back into a descriptor. The
// manifest is checked against the admission rules first. Secret-flagged
// bindings come back with empty values; FromManifests resolves them from the
// accompanying Secret.
func FromDeployment(deployment *appsv1.Deployment) (DeploymentSpec, error) {
	if err := ValidateManifest(deployment); err != nil {
		return DeploymentSpec{}, err
	}

	container := deployment.Spec.Template.Spec.Containers[0]

	spec := DeploymentSpec{
		Name:       deployment.Name,
		Namespace:  deployment.Namespace,
		Labels:     maps.Clone(deployment.Spec.Template.Labels),
		Image:      container.Image,
		PullPolicy: PullPolicy(container.ImagePullPolicy),
	}
	if deployment.Spec.Replicas != nil {
		spec.Replicas = *deployment.Spec.Replicas
	}
	if len(container.Ports) > 0 {
		spec.ContainerPort = container.Ports[0].ContainerPort
	}

	for _, env := range container.Env {
		binding := EnvVar{Name: env.Name, Value: env.Value}
		if source := env.ValueFrom; source != nil && source.SecretKeyRef != nil {
			binding.Secret = true
		}
		spec.Env = append(spec.Env, binding)
	}

	return spec, nil
}

// FromManifests reconstructs a descriptor from a manifest set containing one
// deployment and, optionally, its credentials Secret.
func FromManifests(resources []*unstructured.Unstructured) (DeploymentSpec, error) {
	var deployment *appsv1.Deployment
	secrets := map[string]*corev1.Secret{}

	for _, resource := range resources {
		switch kind := resource.GetKind(); kind {
		case "Deployment":
			if deployment != nil {
				return DeploymentSpec{}, errors.New("manifest set contains more than one deployment")
			}
			deployment = new(appsv1.Deployment)
			if err := runtime.DefaultUnstructuredConverter.FromUnstructured(resource.Object, deployment); err != nil {
				return DeploymentSpec{}, fmt.Errorf("failed to convert deployment: %w", err)
			}
		case "Secret":
			secret := new(corev1.Secret)
			if err := runtime.DefaultUnstructuredConverter.FromUnstructured(resource.Object, secret); err != nil {
				return DeploymentSpec{}, fmt.Errorf("failed to convert secret: %w", err)
			}
			secrets[secret.Name] = secret
		}
	}

	if deployment == nil {
		return DeploymentSpec{}, errors.New("manifest set contains no deployment")
	}

	spec, err := FromDeployment(deployment)
	if err != nil {
		return DeploymentSpec{}, err
	}

	secret := secrets[spec.SecretName()]
	if secret == nil {
		return spec, nil
	}

	for i, env := range spec.Env {
		if !env.Secret {
			continue
		}
		if value, ok := secret.StringData[env.Name]; ok {
			spec.Env[i].Value = value
		} else if value, ok := secret.Data[env.Name]; ok {
			spec.Env[i].Value = string(value)
		}
	}

	return spec, nil
}

// EncodeResources writes the manifest set as a multi-document YAML stream.
func EncodeResources(w io.Writer, resources []*unstructured.Unstructured) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	for _, resource := range resources {
		if err := encoder.Encode(resource.Object); err != nil {
			return fmt.Errorf("failed to encode resource: %w", err)
		}
	}
	return nil
}

// DecodeResources reads a YAML or JSON manifest stream into resources,
// skipping empty documents.
func DecodeResources(r io.Reader) ([]*unstructured.Unstructured, error) {
	decoder := kyaml.NewYAMLOrJSONDecoder(r, 4096)

	var resources []*unstructured.Unstructured
	for {
		var resource unstructured.Unstructured
		if err := decoder.Decode(&resource); err != nil {
			if errors.Is(err, io.EOF) {
				return resources, nil
			}
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		if resource.Object == nil {
			continue
		}
		resources = append(resources, &resource)
	}
}

func toUnstructured(value any) (*unstructured.Unstructured, error) {
	object, err := runtime.DefaultUnstructuredConverter.ToUnstructured(value)
	if err != nil {
		return nil, err
	}
	return &unstructured.Unstructured{Object: object}, nil
}

func ptr[T any](value T) *T { return &value }
