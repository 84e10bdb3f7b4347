// Command peakly is a CLI client for the Peakly core service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// globals are the connection flags shared by remote commands.
type globals struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "peakly",
		Short:         "peakly converts units, resolves program weeks and talks to the Peakly core service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.addr, "addr", "localhost:8443", "server addr")
	pf.StringVar(&g.caPath, "cacert", "", "CA cert (PEM)")
	pf.BoolVar(&g.insecure, "insecure", false, "skip cert verify (dev)")
	pf.BoolVar(&g.plaintext, "plaintext", false, "connect without TLS (dev)")
	pf.DurationVar(&g.timeout, "timeout", 30*time.Second, "per-call timeout")

	root.AddCommand(
		versionCmd(),
		convertCmd(g),
		weekCmd(),
		loginCmd(),
		contentCmd(g),
		assignmentsCmd(g),
		suggestCmd(g),
		recomputeCmd(g),
		ingredientCmd(g),
		nutritionCmd(g),
		enrollCmd(g),
		variantsCmd(g),
		shoppingCmd(g),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version/build metadata",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "peakly %s (%s)\n", version, buildDate)
		},
	}
}

// main runs the root command and exits non-zero on failure.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
