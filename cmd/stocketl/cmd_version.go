package main

import (
	"cmp"
	"context"
	"errors"
	"runtime/debug"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
)

func Version(ctx context.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("build info is not embedded in this binary")
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(internal.Stdout(ctx))
	tbl.SetStyle(table.StyleRounded)

	tbl.AppendRow(table.Row{"stocketl", cmp.Or(info.Main.Version, "(devel)")})

	for _, mod := range info.Deps {
		switch mod.Path {
		case "k8s.io/client-go", "helm.sh/helm/v3":
			tbl.AppendRow(table.Row{mod.Path, mod.Version})
		}
	}

	tbl.Render()

	return nil
}
