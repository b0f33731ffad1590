package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
)

type ApplyParams struct {
	GlobalSettings
	Values            string
	InlineCredentials bool
	SkipDryRun        bool
	ForceConflicts    bool
	WithBacking       bool
	Wait              time.Duration
	Poll              time.Duration
}

//go:embed cmd_apply_help.txt
var applyHelp string

func init() {
	applyHelp = strings.TrimSpace(internal.Colorize(applyHelp))
}

func GetApplyParams(settings GlobalSettings, args []string) (*ApplyParams, error) {
	flagset := flag.NewFlagSet("apply", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), applyHelp)
		flagset.PrintDefaults()
	}

	params := ApplyParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")
	flagset.BoolVar(&params.InlineCredentials, "inline-credentials", false, "render credentials as literal env values instead of a Secret")
	flagset.BoolVar(&params.SkipDryRun, "skip-dry-run", false, "skip the server-side dry run before applying")
	flagset.BoolVar(&params.ForceConflicts, "force-conflicts", false, "take ownership of resources managed by another field manager")
	flagset.BoolVar(&params.WithBacking, "with-backing", false, "deploy the mongodb and minio backing services alongside the workload")
	flagset.DurationVar(&params.Wait, "wait", 0, "wait this long for the workload to become ready; 0 returns immediately after apply")
	flagset.DurationVar(&params.Poll, "poll", 5*time.Second, "readiness polling interval when waiting")

	flagset.Parse(args)

	return &params, nil
}

func Apply(ctx context.Context, params ApplyParams) error {
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

	if err := commander.Apply(ctx, deploy.ApplyParams{
		Spec:              spec,
		InlineCredentials: params.InlineCredentials,
		SkipDryRun:        params.SkipDryRun,
		ForceConflicts:    params.ForceConflicts,
		WithBacking:       params.WithBacking,
		Wait:              params.Wait,
		Poll:              params.Poll,
	}); err != nil {
		return err
	}

	fmt.Fprintf(internal.Stdout(ctx), "applied %s/%s\n", spec.Namespace, spec.Name)
	return nil
}
