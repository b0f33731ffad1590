package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/backing"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type BackingParams struct {
	GlobalSettings
	Values string
	Out    string
}

//go:embed cmd_backing_help.txt
var backingHelp string

func init() {
	backingHelp = strings.TrimSpace(internal.Colorize(backingHelp))
}

func GetBackingParams(settings GlobalSettings, args []string) (*BackingParams, error) {
	flagset := flag.NewFlagSet("backing", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), backingHelp)
		flagset.PrintDefaults()
	}

	params := BackingParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")
	flagset.StringVar(&params.Out, "out", "", "output directory for resources; empty or - writes a manifest stream to stdout")

	flagset.Parse(args)

	return &params, nil
}

// Backing renders only the mongodb and minio service manifests, sized from
// the endpoints the descriptor binds its env to.
func Backing(ctx context.Context, params BackingParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}

	resources, err := backing.Render(backing.EndpointsFromSpec(spec))
	if err != nil {
		return err
	}

	for _, resource := range resources {
		if resource.GetNamespace() == "" {
			resource.SetNamespace(spec.Namespace)
		}
	}
	internal.AddManagedMetadata(resources, spec.Name)

	if params.Out == "" || params.Out == "-" {
		return descriptor.EncodeResources(internal.Stdout(ctx), resources)
	}
	return deploy.ExportToFS(params.Out, spec.Name+"-backing", resources)
}
