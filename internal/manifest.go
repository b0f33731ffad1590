package internal

import (
	"cmp"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const (
	LabelManagedBy = "app.kubernetes.io/managed-by"
	LabelPartOf    = "app.kubernetes.io/part-of"

	// Manager is the field manager and managed-by value stamped on every
	// resource this tool submits to the API server.
	Manager = "stocketl"
)

// AddManagedMetadata labels resources as managed by this tool and as part of
// the named workload. The managed-by label is what ownership checks key on.
func AddManagedMetadata(resources []*unstructured.Unstructured, workload string) {
	for _, resource := range resources {
		labels := resource.GetLabels()
		if labels == nil {
			labels = make(map[string]string)
		}
		labels[LabelManagedBy] = Manager
		labels[LabelPartOf] = workload
		resource.SetLabels(labels)
	}
}

// Canonical returns a stable lowercase identity for a resource:
// namespace.group.version.kind.name
func Canonical(resource *unstructured.Unstructured) string {
	gvk := resource.GetObjectKind().GroupVersionKind()

	return strings.ToLower(strings.Join(
		[]string{
			Namespace(resource),
			cmp.Or(gvk.Group, "core"),
			gvk.Version,
			resource.GetKind(),
			resource.GetName(),
		},
		".",
	))
}

func Namespace(resource *unstructured.Unstructured) string {
	return cmp.Or(resource.GetNamespace(), "_")
}

func CanonicalNameList(resources []*unstructured.Unstructured) []string {
	result := make([]string, len(resources))
	for i, resource := range resources {
		result[i] = Canonical(resource)
	}
	return result
}

func CanonicalObjectMap(resources []*unstructured.Unstructured) map[string]any {
	result := make(map[string]any, len(resources))
	for _, resource := range resources {
		result[Canonical(resource)] = resource.Object
	}
	return result
}
