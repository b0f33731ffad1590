package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/davidmdm/x/xcontext"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if internal.IsWarning(err) {
			return
		}
		os.Exit(1)
	}
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func run() error {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer done()

	settings, err := EnvSettings()
	if err != nil {
		return fmt.Errorf("failed to read environment settings: %w", err)
	}

	RegisterGlobalFlags(flag.CommandLine, &settings)

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), rootHelp)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}

	flag.Parse()

	ctx = internal.WithDebugFlag(ctx, &settings.Debug)

	if len(flag.Args()) == 0 {
		flag.Usage()
		return fmt.Errorf("no command provided")
	}

	subcmdArgs := flag.Args()[1:]

	switch cmd := flag.Arg(0); cmd {
	case "render", "template":
		{
			params, err := GetRenderParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Render(ctx, *params)
		}
	case "validate", "lint":
		{
			var source io.Reader
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				source = os.Stdin
			}
			params, err := GetValidateParams(settings, source, subcmdArgs)
			if err != nil {
				return err
			}
			return Validate(ctx, *params)
		}
	case "apply", "up":
		{
			params, err := GetApplyParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Apply(ctx, *params)
		}
	case "delete", "down":
		{
			params, err := GetDeleteParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Delete(ctx, *params)
		}
	case "diff":
		{
			params, err := GetDiffParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Diff(ctx, *params)
		}
	case "status":
		{
			params, err := GetStatusParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Status(ctx, *params)
		}
	case "backing":
		{
			params, err := GetBackingParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Backing(ctx, *params)
		}
	case "version":
		{
			return Version(ctx)
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
