package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/maciej-mlynski/stock-etl-deploy/internal"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type ValidateParams struct {
	GlobalSettings
	Values   string
	Manifest io.Reader
}

//go:embed cmd_validate_help.txt
var validateHelp string

func init() {
	validateHelp = strings.TrimSpace(internal.Colorize(validateHelp))
}

func GetValidateParams(settings GlobalSettings, source io.Reader, args []string) (*ValidateParams, error) {
	flagset := flag.NewFlagSet("validate", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), validateHelp)
		flagset.PrintDefaults()
	}

	params := ValidateParams{GlobalSettings: settings, Manifest: source}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Values, "values", "", "path to a values file overlaying the built-in descriptor")

	flagset.Parse(args)

	return &params, nil
}

func Validate(ctx context.Context, params ValidateParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	if params.Manifest != nil {
		return validateManifestStream(ctx, params.Manifest)
	}

	spec, err := loadSpec(params.GlobalSettings, params.Values)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(internal.Stdout(ctx), "descriptor ok: %s/%s\n", spec.Namespace, spec.Name)
	return nil
}

func validateManifestStream(ctx context.Context, manifest io.Reader) error {
	resources, err := descriptor.DecodeResources(manifest)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("no resources found on stdin")
	}

	// FromManifests runs the admission rules (selector/template label match,
	// single container); Validate covers the descriptor invariants.
	spec, err := descriptor.FromManifests(resources)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(internal.Stdout(ctx), "manifest ok: %s/%s replicas=%d image=%s\n", spec.Namespace, spec.Name, spec.Replicas, spec.Image)
	return nil
}
