// Package main is the entry point for the cilium-addon CLI.
//
// cilium-addon computes the Helm values of the Cilium CNI for EKS clusters
// running in ENI mode and installs the chart. The Hubble UI can be exposed
// through an AWS ALB ingress when the AWS Load Balancer Controller is
// installed.
//
// Commands: init, values, template, install, version.
//
// For detailed usage information, run:
//
//	cilium-addon --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
