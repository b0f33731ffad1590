package backing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

func TestEndpointsFromSpec(t *testing.T) {
	endpoints := EndpointsFromSpec(descriptor.StockETL())

	require.Equal(t, Endpoints{
		Namespace:      "default",
		MongoURI:       "mongodb://mongo-service:27017/",
		MinioHost:      "minio-service",
		MinioPort:      "9000",
		MinioAccessKey: "minioadmin",
		MinioSecretKey: "minioadmin",
	}, endpoints)
}

func TestRender(t *testing.T) {
	resources, err := Render(EndpointsFromSpec(descriptor.StockETL()))
	require.NoError(t, err)

	byCanonical := map[string]*unstructured.Unstructured{}
	for _, resource := range resources {
		byCanonical[internal.Canonical(resource)] = resource
	}

	require.Contains(t, byCanonical, "default.apps.v1.deployment.mongo-service")
	require.Contains(t, byCanonical, "default.core.v1.service.mongo-service")
	require.Contains(t, byCanonical, "default.apps.v1.deployment.minio-service")
	require.Contains(t, byCanonical, "default.core.v1.service.minio-service")
	require.Contains(t, byCanonical, "default.core.v1.secret.minio-service-auth")
}

func TestRenderPortsAndAuth(t *testing.T) {
	resources, err := Render(Endpoints{
		Namespace:      "stocks",
		MongoURI:       "mongodb://mongo.internal:28017/stocks",
		MinioHost:      "minio.internal",
		MinioPort:      "9900",
		MinioAccessKey: "etl-user",
		MinioSecretKey: "etl-pass",
	})
	require.NoError(t, err)

	byCanonical := map[string]*unstructured.Unstructured{}
	for _, resource := range resources {
		byCanonical[internal.Canonical(resource)] = resource
	}

	mongoSvc := byCanonical["stocks.core.v1.service.mongo.internal"]
	require.NotNil(t, mongoSvc)

	ports, ok, err := unstructured.NestedSlice(mongoSvc.Object, "spec", "ports")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 28017, ports[0].(map[string]any)["port"])

	secret := byCanonical["stocks.core.v1.secret.minio.internal-auth"]
	require.NotNil(t, secret)

	user, _, err := unstructured.NestedString(secret.Object, "stringData", "MINIO_ROOT_USER")
	require.NoError(t, err)
	require.Equal(t, "etl-user", user)

	password, _, err := unstructured.NestedString(secret.Object, "stringData", "MINIO_ROOT_PASSWORD")
	require.NoError(t, err)
	require.Equal(t, "etl-pass", password)

	minioSvc := byCanonical["stocks.core.v1.service.minio.internal"]
	require.NotNil(t, minioSvc)

	ports, ok, err = unstructured.NestedSlice(minioSvc.Object, "spec", "ports")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 9900, ports[0].(map[string]any)["port"])
}

func TestMongoEndpoint(t *testing.T) {
	cases := []struct {
		URI  string
		Host string
		Port int
	}{
		{URI: "mongodb://mongo-service:27017/", Host: "mongo-service", Port: 27017},
		{URI: "mongodb://db.example.com:28017/stocks", Host: "db.example.com", Port: 28017},
		{URI: "mongodb://db.example.com/stocks", Host: "db.example.com", Port: 27017},
		{URI: "", Host: "mongo-service", Port: 27017},
		{URI: "://nonsense", Host: "mongo-service", Port: 27017},
	}

	for _, tc := range cases {
		host, port := mongoEndpoint(tc.URI)
		require.Equal(t, tc.Host, host, tc.URI)
		require.Equal(t, tc.Port, port, tc.URI)
	}
}
