// Package backing renders manifests for the services the stock ETL descriptor
// points at by DNS name: a single-node MongoDB and a MinIO object store. The
// chart values are derived from the descriptor so the service names, ports,
// and credentials always agree with what the ETL container is told via env.
// Intended for local clusters; production environments bring their own
// database and object store.
package backing

import (
	"cmp"
	"embed"
	"fmt"
	"net/url"
	"strconv"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/x/xerr"

	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

//go:embed all:charts
var chartFS embed.FS

const (
	defaultMongoHost = "mongo-service"
	defaultMongoPort = 27017
	defaultMinioHost = "minio-service"
	defaultMinioPort = 9000
)

// Endpoints is the subset of the descriptor the backing charts care about.
type Endpoints struct {
	Namespace      string
	MongoURI       string
	MinioHost      string
	MinioPort      string
	MinioAccessKey string
	MinioSecretKey string
}

// EndpointsFromSpec pulls the backing endpoints out of a descriptor's env
// bindings.
func EndpointsFromSpec(spec descriptor.DeploymentSpec) Endpoints {
	env := func(name string) string {
		value, _ := spec.EnvValue(name)
		return value
	}
	return Endpoints{
		Namespace:      spec.Namespace,
		MongoURI:       env("MONGO_URI"),
		MinioHost:      env("MINIO_HOST"),
		MinioPort:      env("MINIO_PORT"),
		MinioAccessKey: env("MINIO_ACCESS_KEY"),
		MinioSecretKey: env("MINIO_SECRET_KEY"),
	}
}

// Render produces the MongoDB and MinIO manifests for the given endpoints.
func Render(endpoints Endpoints) ([]*unstructured.Unstructured, error) {
	mongoHost, mongoPort := mongoEndpoint(endpoints.MongoURI)

	mongo, err := renderService("mongodb", endpoints.Namespace, map[string]any{
		"service": map[string]any{
			"name": mongoHost,
			"port": mongoPort,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}

	minioPort := defaultMinioPort
	if port, err := strconv.Atoi(endpoints.MinioPort); err == nil && port > 0 {
		minioPort = port
	}

	minio, err := renderService("minio", endpoints.Namespace, map[string]any{
		"service": map[string]any{
			"name": cmp.Or(endpoints.MinioHost, defaultMinioHost),
			"port": minioPort,
		},
		"auth": map[string]any{
			"accessKey": endpoints.MinioAccessKey,
			"secretKey": endpoints.MinioSecretKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}

	return append(mongo, minio...), nil
}

func renderService(name, namespace string, values map[string]any) ([]*unstructured.Unstructured, error) {
	chart, err := loadChart(chartFS, "charts/"+name)
	if err != nil {
		return nil, err
	}

	resources, err := renderChart(chart, name, namespace, values)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	var errs []error
	for _, resource := range resources {
		if resource.GetNamespace() == "" {
			resource.SetNamespace(namespace)
		}
		if resource.GetName() == "" {
			errs = append(errs, fmt.Errorf("%s rendered a resource without a name", name))
		}
	}

	return resources, xerr.MultiErrOrderedFrom("", errs...)
}

// mongoEndpoint extracts host and port from a mongodb:// connection string,
// falling back to the stock defaults when the URI does not parse.
func mongoEndpoint(uri string) (string, int) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Hostname() == "" {
		return defaultMongoHost, defaultMongoPort
	}

	port := defaultMongoPort
	if value, err := strconv.Atoi(parsed.Port()); err == nil && value > 0 {
		port = value
	}

	return parsed.Hostname(), port
}
