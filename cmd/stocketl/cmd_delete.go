package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
)

type DeleteParams struct {
	GlobalSettings
	Values      string
	WithBacking bool
}

//go:embed cmd_delete_help.txt
var deleteHelp string

func init() {
	deleteHelp = strings.TrimSpace(internal.Colorize(deleteHelp))
}

func GetDeleteParams(settings GlobalSettings, args []string) (*DeleteParams, error) {
	flagset := flag.NewFlagSet("delete", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), deleteHelp)
		flagset.PrintDefaults()
	}

	params := DeleteParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")
	flagset.BoolVar(&params.WithBacking, "with-backing", false, "remove the mongodb and minio backing services too")

	flagset.Parse(args)

	return &params, nil
}

func Delete(ctx context.Context, params DeleteParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}

	commander, err := deploy.FromKubeConfig(params.KubeConfigPath)
	if err != nil {
		return err
	}

	return commander.Delete(ctx, deploy.DeleteParams{
		Spec:        spec,
		WithBacking: params.WithBacking,
	})
}
