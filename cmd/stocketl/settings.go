package main

import (
	"cmp"
	"flag"

	"github.com/davidmdm/conf"

	"github.com/maciej-mlynski/stock-etl-deploy/internal/home"
	"github.com/maciej-mlynski/stock-etl-deploy/pkg/descriptor"
)

type GlobalSettings struct {
	KubeConfigPath string
	Namespace      string
	Debug          bool
}

// EnvSettings resolves defaults from the environment before flag parsing, so
// flags win over env which wins over built-ins.
func EnvSettings() (settings GlobalSettings, err error) {
	conf.Var(conf.Environ, &settings.KubeConfigPath, "STOCKETL_KUBECONFIG")
	conf.Var(conf.Environ, &settings.Namespace, "STOCKETL_NAMESPACE")
	err = conf.Environ.Parse()

	settings.KubeConfigPath = cmp.Or(settings.KubeConfigPath, home.Kubeconfig)
	settings.Namespace = cmp.Or(settings.Namespace, "default")
	return
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.StringVar(&settings.KubeConfigPath, "kubeconfig", settings.KubeConfigPath, "path to kube config")
	flagset.StringVar(&settings.Namespace, "namespace", settings.Namespace, "namespace for the workload (a values file takes precedence)")
	flagset.BoolVar(&settings.Debug, "debug", settings.Debug, "print debug timings to stderr")
}

// loadSpec builds the effective descriptor: built-in defaults, then the
// namespace setting, then the values file overlay.
func loadSpec(settings GlobalSettings, valuesPath string) (descriptor.DeploymentSpec, error) {
	spec := descriptor.StockETL()
	spec.Namespace = settings.Namespace
	if valuesPath == "" {
		return spec, nil
	}
	return descriptor.LoadFile(spec, valuesPath)
}
