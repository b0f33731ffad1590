package backing

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	kyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
)

func loadChart(fsys fs.FS, root string) (*chart.Chart, error) {
	var files []*loader.BufferedFile

	err := fs.WalkDir(fsys, root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		// helm expects paths relative to the chart root.
		files = append(files, &loader.BufferedFile{
			Name: strings.TrimPrefix(p, root+"/"),
			Data: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk chart dir %s: %w", root, err)
	}

	loaded, err := loader.LoadFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", root, err)
	}
	return loaded, nil
}

func renderChart(c *chart.Chart, release, namespace string, values map[string]any) ([]*unstructured.Unstructured, error) {
	opts := chartutil.ReleaseOptions{
		Name:      release,
		Namespace: namespace,
	}

	renderValues, err := chartutil.ToRenderValues(c, values, opts, chartutil.DefaultCapabilities.Copy())
	if err != nil {
		return nil, fmt.Errorf("failed to compose render values: %w", err)
	}

	rendered, err := engine.Engine{}.Render(c, renderValues)
	if err != nil {
		return nil, err
	}

	var results []*unstructured.Unstructured
	for name, content := range rendered {
		if path.Ext(name) != ".yaml" {
			continue
		}

		var resource unstructured.Unstructured
		if err := kyaml.Unmarshal([]byte(content), &resource); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if resource.Object == nil {
			continue
		}
		results = append(results, &resource)
	}

	slices.SortFunc(results, func(a, b *unstructured.Unstructured) int {
		return strings.Compare(internal.Canonical(a), internal.Canonical(b))
	})

	return results, nil
}
