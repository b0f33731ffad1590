package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
)

type DiffParams struct {
	GlobalSettings
	Values            string
	InlineCredentials bool
	WithBacking       bool
	Context           int
	Color             bool
}

//go:embed cmd_diff_help.txt
var diffHelp string

func init() {
	diffHelp = strings.TrimSpace(internal.Colorize(diffHelp))
}

func GetDiffParams(settings GlobalSettings, args []string) (*DiffParams, error) {
	flagset := flag.NewFlagSet("diff", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), diffHelp)
		flagset.PrintDefaults()
	}

	params := DiffParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")
	flagset.BoolVar(&params.InlineCredentials, "inline-credentials", false, "render credentials as literal env values instead of a Secret")
	flagset.BoolVar(&params.WithBacking, "with-backing", false, "include the mongodb and minio backing service manifests")
	flagset.IntVar(&params.Context, "context", 4, "number of context lines in the diff")
	flagset.BoolVar(&params.Color, "color", term.IsTerminal(int(os.Stdout.Fd())), "colorize diff output")

	flagset.Parse(args)

	return &params, nil
}

func Diff(ctx context.Context, params DiffParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	commander, err := deploy.FromKubeConfig(params.KubeConfigPath)
	if err != nil {
		return err
	}

	return commander.Diff(ctx, deploy.DiffParams{
		Spec:              spec,
		InlineCredentials: params.InlineCredentials,
		WithBacking:       params.WithBacking,
		Context:           params.Context,
		Color:             params.Color,
	})
}
