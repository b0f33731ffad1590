package deploy

import (
	"context"
	"fmt"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type DeleteParams struct {
	Spec        descriptor.DeploymentSpec
	WithBacking bool
}

// Delete removes the workload's resources from the cluster. Resources already
// absent are skipped; the names of those actually removed are reported.
func (commander Commander) Delete(ctx context.Context, params DeleteParams) error {
	defer internal.DebugTimer(ctx, "delete")()

	// Render with the secret included so a credentials Secret from a previous
	// apply is removed even if the last render was inline.
	resources, err := renderAll(ctx, params.Spec, descriptor.RenderOpts{}, params.WithBacking)
	if err != nil {
		return err
	}

	removed, err := commander.k8s.DeleteResources(ctx, resources)
	if err != nil {
		return fmt.Errorf("failed to delete resources: %w", err)
	}

	if len(removed) == 0 {
		return internal.Warning("nothing to delete")
	}

	for _, name := range internal.CanonicalNameList(removed) {
		fmt.Fprintf(internal.Stdout(ctx), "deleted %s\n", name)
	}

	return nil
}
