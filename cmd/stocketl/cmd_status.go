package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/deploy"
)

type StatusParams struct {
	GlobalSettings
	Values string
}

//go:embed cmd_status_help.txt
var statusHelp string

func init() {
	statusHelp = strings.TrimSpace(internal.Colorize(statusHelp))
}

func GetStatusParams(settings GlobalSettings, args []string) (*StatusParams, error) {
	flagset := flag.NewFlagSet("status", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), statusHelp)
		flagset.PrintDefaults()
	}

	params := StatusParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")

	flagset.Parse(args)

	return &params, nil
}

func Status(ctx context.Context, params StatusParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}

	commander, err := deploy.FromKubeConfig(params.KubeConfigPath)
	if err != nil {
		return err
	}

	deployment, err := commander.Status(ctx, spec)
	if err != nil {
		return err
	}

	stdout := internal.Stdout(ctx)

	summary := table.NewWriter()
	summary.SetOutputMirror(stdout)
	summary.SetStyle(table.StyleRounded)
	summary.AppendHeader(table.Row{"deployment", "desired", "ready", "updated", "available"})

	var desired int32 = 1
	if deployment.Spec.Replicas != nil {
		desired = *deployment.Spec.Replicas
	}

	summary.AppendRow(table.Row{
		deployment.Namespace + "/" + deployment.Name,
		desired,
		deployment.Status.ReadyReplicas,
		deployment.Status.UpdatedReplicas,
		deployment.Status.AvailableReplicas,
	})
	summary.Render()

	if len(deployment.Status.Conditions) == 0 {
		return nil
	}

	conditions := table.NewWriter()
	conditions.SetOutputMirror(stdout)
	conditions.SetStyle(table.StyleRounded)
	conditions.AppendHeader(table.Row{"condition", "status", "reason", "message"})

	for _, cond := range deployment.Status.Conditions {
		conditions.AppendRow(table.Row{cond.Type, cond.Status, cond.Reason, cond.Message})
	}
	conditions.Render()

	return nil
}
