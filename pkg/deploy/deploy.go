// Package deploy drives the declared stock ETL state against a cluster. It
// renders the descriptor, submits the manifests to the API server, and reads
// status back. Reconciliation stays with the control plane; nothing here
// loops or owns resource lifecycle.
package deploy

import (
	"cmp"
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/internal/k8s"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/backing"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type Commander struct {
	k8s *k8s.Client
}

func FromKubeConfig(path string) (*Commander, error) {
	client, err := k8s.NewClientFromKubeConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize k8s client: %w", err)
	}
	return &Commander{client}, nil
}

// renderAll produces the full manifest set for a descriptor: the workload
// resources, preceded by backing services when requested, all stamped with
// managed-by metadata and defaulted into the descriptor's namespace.
func renderAll(ctx context.Context, spec descriptor.DeploymentSpec, opts descriptor.RenderOpts, withBacking bool) ([]*unstructured.Unstructured, error) {
	defer internal.DebugTimer(ctx, "render manifests")()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	resources, err := spec.Resources(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render workload resources: %w", err)
	}

	if withBacking {
		services, err := backing.Render(backing.EndpointsFromSpec(spec))
		if err != nil {
			return nil, fmt.Errorf("failed to render backing services: %w", err)
		}
		resources = append(services, resources...)
	}

	for _, resource := range resources {
		if resource.GetNamespace() == "" {
			resource.SetNamespace(cmp.Or(spec.Namespace, "default"))
		}
	}

	internal.AddManagedMetadata(resources, spec.Name)

	return resources, nil
}
