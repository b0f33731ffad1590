// Package home resolves user-level paths. The KUBECONFIG env var takes
// precedence over the conventional location.
package home

import (
	"os"
	"path/filepath"
)

var Kubeconfig string

func init() {
	if path := os.Getenv("KUBECONFIG"); path != "" {
		Kubeconfig = path
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	Kubeconfig = filepath.Join(home, ".kube", "config")
}
