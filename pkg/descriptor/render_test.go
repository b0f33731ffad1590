package descriptor

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestDeploymentSecretMode(t *testing.T) {
	spec := StockETL()
	deployment := spec.Deployment(RenderOpts{})

	require.Equal(t, deployment.Labels, deployment.Spec.Selector.MatchLabels)
	require.Equal(t, deployment.Labels, deployment.Spec.Template.Labels)

	container := deployment.Spec.Template.Spec.Containers[0]
	require.Equal(t, "stock-etl", container.Name)
	require.EqualValues(t, 8000, container.Ports[0].ContainerPort)

	byName := make(map[string]corev1.EnvVar, len(container.Env))
	for _, env := range container.Env {
		byName[env.Name] = env
	}

	require.Equal(t, "mongodb://mongo-service:27017/", byName["MONGO_URI"].Value)

	access := byName["MINIO_ACCESS_KEY"]
	require.Empty(t, access.Value)
	require.NotNil(t, access.ValueFrom)
	require.Equal(t, "stock-etl-credentials", access.ValueFrom.SecretKeyRef.Name)
	require.Equal(t, "MINIO_ACCESS_KEY", access.ValueFrom.SecretKeyRef.Key)
}

func TestDeploymentInlineMode(t *testing.T) {
	deployment := StockETL().Deployment(RenderOpts{InlineCredentials: true})

	for _, env := range deployment.Spec.Template.Spec.Containers[0].Env {
		require.Nil(t, env.ValueFrom)
	}

	container := deployment.Spec.Template.Spec.Containers[0]
	byName := make(map[string]string, len(container.Env))
	for _, env := range container.Env {
		byName[env.Name] = env.Value
	}
	require.Equal(t, "minioadmin", byName["MINIO_ACCESS_KEY"])
	require.Equal(t, "minioadmin", byName["MINIO_SECRET_KEY"])
}

func TestCredentialsSecret(t *testing.T) {
	secret := StockETL().CredentialsSecret()
	require.NotNil(t, secret)
	require.Equal(t, "stock-etl-credentials", secret.Name)
	require.Equal(t, corev1.SecretTypeOpaque, secret.Type)
	require.Equal(t, map[string]string{"MINIO_ACCESS_KEY": "minioadmin", "MINIO_SECRET_KEY": "minioadmin"}, secret.StringData)

	spec := StockETL()
	for i := range spec.Env {
		spec.Env[i].Secret = false
	}
	require.Nil(t, spec.CredentialsSecret())
}

func TestResources(t *testing.T) {
	spec := StockETL()

	secretMode, err := spec.Resources(RenderOpts{})
	require.NoError(t, err)
	require.Len(t, secretMode, 2)
	require.Equal(t, "Secret", secretMode[0].GetKind())
	require.Equal(t, "Deployment", secretMode[1].GetKind())

	inline, err := spec.Resources(RenderOpts{InlineCredentials: true})
	require.NoError(t, err)
	require.Len(t, inline, 1)
	require.Equal(t, "Deployment", inline[0].GetKind())
}

func TestRoundTripSecretMode(t *testing.T) {
	spec := StockETL()

	resources, err := spec.Resources(RenderOpts{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeResources(&buf, resources))

	decoded, err := DecodeResources(&buf)
	require.NoError(t, err)

	actual, err := FromManifests(decoded)
	require.NoError(t, err)
	require.Equal(t, spec, actual)
}

func TestRoundTripInlineMode(t *testing.T) {
	spec := StockETL()
	for i := range spec.Env {
		spec.Env[i].Secret = false
	}

	resources, err := spec.Resources(RenderOpts{InlineCredentials: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeResources(&buf, resources))

	decoded, err := DecodeResources(&buf)
	require.NoError(t, err)

	actual, err := FromManifests(decoded)
	require.NoError(t, err)
	require.Equal(t, spec, actual)
}

func TestFromManifestsShippedArtifact(t *testing.T) {
	file, err := os.Open("testdata/stock-etl.yaml")
	require.NoError(t, err)
	defer file.Close()

	resources, err := DecodeResources(file)
	require.NoError(t, err)
	require.Len(t, resources, 1)

	spec, err := FromManifests(resources)
	require.NoError(t, err)
	require.NoError(t, spec.Validate())

	require.EqualValues(t, 1, spec.Replicas)
	require.Equal(t, "stock-etl-app:latest", spec.Image)
	require.EqualValues(t, 8000, spec.ContainerPort)
	require.Equal(t, map[string]string{"app": "stock-etl"}, spec.Labels)

	uri, ok := spec.EnvValue("MONGO_URI")
	require.True(t, ok)
	require.Equal(t, "mongodb://mongo-service:27017/", uri)
}

func TestFromManifestsRejectsInvalid(t *testing.T) {
	t.Run("no deployment", func(t *testing.T) {
		resource, err := toUnstructured(StockETL().CredentialsSecret())
		require.NoError(t, err)

		_, err = FromManifests([]*unstructured.Unstructured{resource})
		require.ErrorContains(t, err, "manifest set contains no deployment")
	})

	t.Run("two deployments", func(t *testing.T) {
		resources, err := StockETL().Resources(RenderOpts{InlineCredentials: true})
		require.NoError(t, err)

		_, err = FromManifests(append(resources, resources[0]))
		require.ErrorContains(t, err, "manifest set contains more than one deployment")
	})
}
