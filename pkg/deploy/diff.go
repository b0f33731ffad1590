package deploy

import (
	"context"
	"fmt"

	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/internal/text"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type DiffParams struct {
	Spec              descriptor.DeploymentSpec
	InlineCredentials bool
	WithBacking       bool
	Context           int
	Color             bool
}

// Diff prints a unified diff between the live cluster state and the rendered
// manifests. Resources not found on the cluster diff against nothing.
func (commander Commander) Diff(ctx context.Context, params DiffParams) error {
	defer internal.DebugTimer(ctx, "diff")()

	resources, err := renderAll(ctx, params.Spec, descriptor.RenderOpts{InlineCredentials: params.InlineCredentials}, params.WithBacking)
	if err != nil {
		return err
	}

	live := make(map[string]any, len(resources))
	for _, resource := range resources {
		state, err := commander.k8s.GetResource(ctx, resource)
		if kerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lookup %s: %w", internal.Canonical(resource), err)
		}
		dropServerManagedFields(state)
		live[internal.Canonical(resource)] = state.Object
	}

	a, err := text.ToYamlFile("live", live)
	if err != nil {
		return err
	}

	b, err := text.ToYamlFile("rendered", internal.CanonicalObjectMap(resources))
	if err != nil {
		return err
	}

	differ := func() text.DiffFunc {
		if params.Color {
			return text.DiffColorized
		}
		return text.Diff
	}()

	_, err = fmt.Fprint(internal.Stdout(ctx), differ(a, b, params.Context))
	return err
}

// dropServerManagedFields strips the fields the API server fills in so that a
// freshly applied resource diffs clean against its rendered form.
func dropServerManagedFields(resource *unstructured.Unstructured) {
	unstructured.RemoveNestedField(resource.Object, "metadata", "managedFields")
	unstructured.RemoveNestedField(resource.Object, "metadata", "resourceVersion")
	unstructured.RemoveNestedField(resource.Object, "metadata", "uid")
	unstructured.RemoveNestedField(resource.Object, "metadata", "generation")
	unstructured.RemoveNestedField(resource.Object, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(resource.Object, "metadata", "annotations", "deployment.kubernetes.io/revision")
	unstructured.RemoveNestedField(resource.Object, "status")
}
