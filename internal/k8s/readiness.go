package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/x/xerr"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
)

type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// WaitForReadyMany polls every resource until ready or until the timeout.
func (client Client) WaitForReadyMany(ctx context.Context, resources []*unstructured.Unstructured, opts WaitOptions) error {
	var errs []error
	for _, resource := range resources {
		if err := client.WaitForReady(ctx, resource, opts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", internal.Canonical(resource), err))
		}
	}
	return xerr.MultiErrOrderedFrom("", errs...)
}

func (client Client) WaitForReady(ctx context.Context, resource *unstructured.Unstructured, opts WaitOptions) error {
	defer internal.DebugTimer(ctx, "waiting for "+internal.Canonical(resource))()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		live, err := client.GetResource(ctx, resource)
		if err != nil {
			return fmt.Errorf("failed to get resource: %w", err)
		}
		if isReady(live) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// isReady covers the resource kinds this tool submits: the workload
// deployment, its credentials secret, the backing services, and namespaces.
// Kinds without a readiness signal report ready immediately.
func isReady(resource *unstructured.Unstructured) bool {
	gvk := resource.GroupVersionKind()

	switch gvk.Group {
	case "":
		switch gvk.Kind {
		case "Namespace":
			phase, _, _ := unstructured.NestedString(resource.Object, "status", "phase")
			return phase == "Active"
		case "Pod":
			return meetsConditions(resource, "Ready")
		}
	case "apps":
		switch gvk.Kind {
		case "Deployment":
			return meetsConditions(resource, "Available") &&
				equalInts(resource, "replicas", "availableReplicas", "readyReplicas", "updatedReplicas")
		case "ReplicaSet", "StatefulSet":
			return equalInts(resource, "replicas", "availableReplicas", "readyReplicas", "updatedReplicas")
		}
	}

	return true
}

func meetsConditions(resource *unstructured.Unstructured, keys ...string) bool {
	conditions, _, _ := unstructured.NestedSlice(resource.Object, "status", "conditions")

	trueConditions := map[string]bool{}
	for _, condition := range conditions {
		values, _ := condition.(map[string]any)
		cond, _ := values["type"].(string)
		if cond == "" {
			continue
		}
		trueConditions[cond] = values["status"] == "True"
	}

	for _, key := range keys {
		if !trueConditions[key] {
			return false
		}
	}

	return true
}

func equalInts(resource *unstructured.Unstructured, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}

	values := []int64{}
	for _, key := range keys {
		value, _, _ := unstructured.NestedInt64(resource.Object, "status", key)
		values = append(values, value)
	}

	wanted := values[0]
	for _, value := range values[1:] {
		if value != wanted {
			return false
		}
	}

	return true
}
