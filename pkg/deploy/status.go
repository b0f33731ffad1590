package deploy

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"

	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

// Status fetches the live deployment the descriptor declares.
func (commander Commander) Status(ctx context.Context, spec descriptor.DeploymentSpec) (*appsv1.Deployment, error) {
	deployment, err := commander.k8s.GetDeployment(ctx, spec.Namespace, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %s/%s: %w", spec.Namespace, spec.Name, err)
	}
	return deployment, nil
}
