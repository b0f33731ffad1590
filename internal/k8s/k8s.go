package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/davidmdm/x/xerr"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
)

// Client is a thin wrapper over the dynamic and typed clients. It submits
// manifests to the API server and reads state back; it owns no reconciliation.
type Client struct {
	dynamic   *dynamic.DynamicClient
	clientset *kubernetes.Clientset
	mapper    *restmapper.DeferredDiscoveryRESTMapper
}

func NewClientFromKubeConfig(path string) (*Client, error) {
	restcfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("failed to build k8 config: %w", err)
	}
	return NewClient(restcfg)
}

func NewClient(cfg *rest.Config) (*Client, error) {
	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client component: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create k8 clientset: %w", err)
	}

	return &Client{
		dynamic:   dynamicClient,
		clientset: clientset,
		mapper:    restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(clientset.DiscoveryClient)),
	}, nil
}

type ApplyResourcesOpts struct {
	SkipDryRun     bool
	ForceConflicts bool
}

// ApplyResources server-side applies the resources, running a dry-run pass
// first so that admission failures surface before anything is mutated.
func (client Client) ApplyResources(ctx context.Context, resources []*unstructured.Unstructured, opts ApplyResourcesOpts) error {
	var errs []error

	if !opts.SkipDryRun {
		for _, resource := range resources {
			if err := client.ApplyResource(ctx, resource, ApplyOpts{DryRun: true}); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", internal.Canonical(resource), err))
			}
		}
		if err := xerr.MultiErrOrderedFrom("dry run", errs...); err != nil {
			return err
		}
	}

	for _, resource := range resources {
		if err := client.ApplyResource(ctx, resource, ApplyOpts{DryRun: false, ForceConflicts: opts.ForceConflicts}); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", internal.Canonical(resource), err))
		}
	}

	return xerr.MultiErrOrderedFrom("", errs...)
}

type ApplyOpts struct {
	DryRun         bool
	ForceConflicts bool
}

func (client Client) ApplyResource(ctx context.Context, resource *unstructured.Unstructured, opts ApplyOpts) error {
	resourceInterface, err := client.GetDynamicResourceInterface(resource)
	if err != nil {
		return fmt.Errorf("failed to resolve resource: %w", err)
	}

	dryRun := func() []string {
		if opts.DryRun {
			return []string{metav1.DryRunAll}
		}
		return nil
	}()

	data, err := json.Marshal(resource)
	if err != nil {
		return err
	}

	_, err = resourceInterface.Patch(
		ctx,
		resource.GetName(),
		types.ApplyPatchType,
		data,
		metav1.PatchOptions{
			FieldManager: internal.Manager,
			Force:        &opts.ForceConflicts,
			DryRun:       dryRun,
		},
	)
	return err
}

// ValidateOwnership refuses to touch live resources that exist but are not
// labeled as managed by this tool.
func (client Client) ValidateOwnership(ctx context.Context, resources []*unstructured.Unstructured) error {
	var errs []error
	for _, resource := range resources {
		live, err := client.GetResource(ctx, resource)
		if kerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to lookup %s: %w", internal.Canonical(resource), err))
			continue
		}
		if manager := live.GetLabels()[internal.LabelManagedBy]; manager != internal.Manager {
			errs = append(errs, fmt.Errorf("resource %+q exists but is not managed by %s", internal.Canonical(resource), internal.Manager))
		}
	}
	return xerr.MultiErrOrderedFrom("conflict(s)", errs...)
}

// DeleteResources removes the resources, skipping ones already absent, and
// returns those actually removed.
func (client Client) DeleteResources(ctx context.Context, resources []*unstructured.Unstructured) ([]*unstructured.Unstructured, error) {
	var errs []error
	var removed []*unstructured.Unstructured

	for _, resource := range resources {
		resourceInterface, err := client.GetDynamicResourceInterface(resource)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to resolve resource %s: %w", internal.Canonical(resource), err))
			continue
		}

		if err := resourceInterface.Delete(ctx, resource.GetName(), metav1.DeleteOptions{}); err != nil {
			if kerrors.IsNotFound(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", internal.Canonical(resource), err))
			continue
		}

		removed = append(removed, resource)
	}

	return removed, xerr.MultiErrOrderedFrom("", errs...)
}

// GetResource fetches the live copy of a rendered resource.
func (client Client) GetResource(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	resourceInterface, err := client.GetDynamicResourceInterface(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource: %w", err)
	}
	return resourceInterface.Get(ctx, resource.GetName(), metav1.GetOptions{})
}

func (client Client) GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, error) {
	return client.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
}

func (client Client) EnsureNamespace(ctx context.Context, namespace string) error {
	_, err := client.clientset.CoreV1().Namespaces().Create(
		ctx,
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}},
		metav1.CreateOptions{FieldManager: internal.Manager},
	)
	if kerrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func (client Client) GetDynamicResourceInterface(resource *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	mapping, err := client.LookupResourceMapping(resource)
	if err != nil {
		return nil, err
	}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		return client.dynamic.Resource(mapping.Resource).Namespace(resource.GetNamespace()), nil
	}
	return client.dynamic.Resource(mapping.Resource), nil
}

func (client *Client) LookupResourceMapping(resource *unstructured.Unstructured) (*meta.RESTMapping, error) {
	gvk := schema.FromAPIVersionAndKind(resource.GetAPIVersion(), resource.GetKind())
	return client.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
}
