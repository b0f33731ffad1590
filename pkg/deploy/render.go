package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/x/xerr"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type RenderParams struct {
	Spec        descriptor.DeploymentSpec
	Opts        descriptor.RenderOpts
	WithBacking bool
	// Out is a directory to export resources into; empty or "-" writes a
	// multi-document stream to stdout.
	Out string
}

// Render expresses the descriptor as manifests without touching any cluster.
func Render(ctx context.Context, params RenderParams) error {
	resources, err := renderAll(ctx, params.Spec, params.Opts, params.WithBacking)
	if err != nil {
		return err
	}

	if params.Out == "" || params.Out == "-" {
		return descriptor.EncodeResources(internal.Stdout(ctx), resources)
	}
	return ExportToFS(params.Out, params.Spec.Name, resources)
}

// ExportToFS writes each resource to <dir>/<workload>/<canonical-name>.yaml,
// replacing any previous export.
func ExportToFS(dir, workload string, resources []*unstructured.Unstructured) error {
	root := filepath.Join(dir, workload)

	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove previous export: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	for _, resource := range resources {
		path := filepath.Join(root, internal.Canonical(resource)+".yaml")

		if err := internal.WriteYAML(path, resource.Object); err != nil {
			errs = append(errs, err)
		}
	}

	return xerr.MultiErrFrom("failed to write resource(s)", errs...)
}
