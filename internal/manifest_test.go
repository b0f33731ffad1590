package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestCanonical(t *testing.T) {
	deployment := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "apps/v1",
			"kind":       "Deployment",
			"metadata":   map[string]any{"name": "stock-etl", "namespace": "default"},
		},
	}
	require.Equal(t, "default.apps.v1.deployment.stock-etl", Canonical(deployment))

	secret := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"kind":       "Secret",
			"metadata":   map[string]any{"name": "stock-etl-credentials"},
		},
	}
	require.Equal(t, "_.core.v1.secret.stock-etl-credentials", Canonical(secret))
}

func TestAddManagedMetadata(t *testing.T) {
	resource := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"kind":       "Service",
			"metadata":   map[string]any{"name": "mongo-service", "labels": map[string]any{"app": "mongo-service"}},
		},
	}

	AddManagedMetadata([]*unstructured.Unstructured{resource}, "stock-etl")

	labels := resource.GetLabels()
	require.Equal(t, Manager, labels[LabelManagedBy])
	require.Equal(t, "stock-etl", labels[LabelPartOf])
	require.Equal(t, "mongo-service", labels["app"])
}
