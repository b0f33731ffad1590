package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type RenderParams struct {
	GlobalSettings
	Values            string
	Out               string
	InlineCredentials bool
	WithBacking       bool
}

//go:embed cmd_render_help.txt
var renderHelp string

func init() {
	renderHelp = strings.TrimSpace(internal.Colorize(renderHelp))
}

func GetRenderParams(settings GlobalSettings, args []string) (*RenderParams, error) {
	flagset := flag.NewFlagSet("render", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), renderHelp)
		flagset.PrintDefaults()
	}

	params := RenderParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")
	flagset.StringVar(&params.Out, "out", "", "output directory for resources; empty or - writes a manifest stream to stdout")
	flagset.BoolVar(&params.InlineCredentials, "inline-credentials", false, "render credentials as literal env values instead of a Secret")
	flagset.BoolVar(&params.WithBacking, "with-backing", false, "include the mongodb and minio backing service manifests")

	flagset.Parse(args)

	return &params, nil
}

func Render(ctx context.Context, params RenderParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}

	return deploy.Render(ctx, deploy.RenderParams{
		Spec:        spec,
		Opts:        descriptor.RenderOpts{InlineCredentials: params.InlineCredentials},
		WithBacking: params.WithBacking,
		Out:         params.Out,
	})
}
