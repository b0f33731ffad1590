package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStockETLDefaults(t *testing.T) {
	spec := StockETL()

	require.NoError(t, spec.Validate())

	require.Equal(t, "stock-etl", spec.Name)
	require.Equal(t, "default", spec.Namespace)
	require.Equal(t, map[string]string{"app": "stock-etl"}, spec.Labels)
	require.EqualValues(t, 1, spec.Replicas)
	require.Equal(t, "stock-etl-app:latest", spec.Image)
	require.Equal(t, PullIfNotPresent, spec.PullPolicy)
	require.EqualValues(t, 8000, spec.ContainerPort)

	mongo, ok := spec.EnvValue("MONGO_URI")
	require.True(t, ok)
	require.Equal(t, "mongodb://mongo-service:27017/", mongo)

	host, ok := spec.EnvValue("MINIO_HOST")
	require.True(t, ok)
	require.Equal(t, "minio-service", host)

	port, ok := spec.EnvValue("MINIO_PORT")
	require.True(t, ok)
	require.Equal(t, "9000", port)

	var secretKeys []string
	for _, env := range spec.Env {
		if env.Secret {
			secretKeys = append(secretKeys, env.Name)
		}
	}
	require.Equal(t, []string{"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY"}, secretKeys)

	_, ok = spec.EnvValue("NOPE")
	require.False(t, ok)
}

func TestLoadOverlay(t *testing.T) {
	values := strings.NewReader(`
replicas: 3
image: stock-etl-app:v1.2.0
env:
  - name: MONGO_URI
    value: mongodb://mongo.internal:27017/
`)

	spec, err := Load(StockETL(), values)
	require.NoError(t, err)

	require.EqualValues(t, 3, spec.Replicas)
	require.Equal(t, "stock-etl-app:v1.2.0", spec.Image)

	// untouched keys keep their defaults
	require.Equal(t, "stock-etl", spec.Name)
	require.EqualValues(t, 8000, spec.ContainerPort)
	require.Equal(t, PullIfNotPresent, spec.PullPolicy)

	// env is replaced wholesale
	require.Len(t, spec.Env, 1)
	require.Equal(t, EnvVar{Name: "MONGO_URI", Value: "mongodb://mongo.internal:27017/"}, spec.Env[0])
}

func TestLoadEmptyDocument(t *testing.T) {
	spec, err := Load(StockETL(), strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, StockETL(), spec)
}

func TestLoadInvalidDocument(t *testing.T) {
	_, err := Load(StockETL(), strings.NewReader("replicas: [not, a, number]"))
	require.ErrorContains(t, err, "failed to decode values")
}
