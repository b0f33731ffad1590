package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/internal/k8s"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type ApplyParams struct {
	Spec              descriptor.DeploymentSpec
	InlineCredentials bool
	SkipDryRun        bool
	ForceConflicts    bool
	WithBacking       bool
	Wait              time.Duration
	Poll              time.Duration
}

// Apply submits the rendered manifests to the API server via server-side
// apply. A dry-run pass runs first unless skipped, so admission failures
// surface before anything is mutated. With Wait set, Apply polls until the
// workload reports ready.
func (commander Commander) Apply(ctx context.Context, params ApplyParams) error {
	defer internal.DebugTimer(ctx, "apply")()

	resources, err := renderAll(ctx, params.Spec, descriptor.RenderOpts{InlineCredentials: params.InlineCredentials}, params.WithBacking)
	if err != nil {
		return err
	}

	if err := commander.k8s.EnsureNamespace(ctx, params.Spec.Namespace); err != nil {
		return fmt.Errorf("failed to ensure namespace: %w", err)
	}

	if err := commander.k8s.ValidateOwnership(ctx, resources); err != nil {
		if !params.ForceConflicts {
			return fmt.Errorf("failed to validate ownership: %w", err)
		}
		internal.Debug(ctx).Printf("overriding ownership: %v\n", err)
	}

	applyOpts := k8s.ApplyResourcesOpts{
		SkipDryRun:     params.SkipDryRun,
		ForceConflicts: params.ForceConflicts,
	}

	if err := commander.k8s.ApplyResources(ctx, resources, applyOpts); err != nil {
		return fmt.Errorf("failed to apply resources: %w", err)
	}

	if params.Wait > 0 {
		waitOpts := k8s.WaitOptions{Timeout: params.Wait, Interval: params.Poll}
		if err := commander.k8s.WaitForReadyMany(ctx, resources, waitOpts); err != nil {
			return fmt.Errorf("workload did not become ready within wait period: %w", err)
		}
	}

	return nil
}
