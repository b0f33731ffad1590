package descriptor

// StockETL is the descriptor for the stock ETL deployment as shipped: one
// replica of the locally built image, serving on port 8000, wired to the
// in-cluster mongo and minio services by DNS name. The MinIO credentials are
// the server's stock defaults and are flagged secret so that default rendering
// keeps them out of the pod spec.
func StockETL() DeploymentSpec {
	return DeploymentSpec{
		Name:          "stock-etl",
		Namespace:     "default",
		Labels:        map[string]string{"app": "stock-etl"},
		Replicas:      1,
		Image:         "stock-etl-app:latest",
		PullPolicy:    PullIfNotPresent,
		ContainerPort: 8000,
		Env: []EnvVar{
			{Name: "MONGO_URI", Value: "mongodb://mongo-service:27017/"},
			{Name: "MINIO_HOST", Value: "minio-service"},
			{Name: "MINIO_PORT", Value: "9000"},
			{Name: "MINIO_ACCESS_KEY", Value: "minioadmin", Secret: true},
			{Name: "MINIO_SECRET_KEY", Value: "minioadmin", Secret: true},
		},
	}
}
