/*
Package main is the entry point for the subscope command-line application.

subscope discovers subdomains of a root domain through certificate
transparency logs, optionally probes each discovered hostname for HTTP/HTTPS
liveness, and writes one timestamped JSON report per run.

The pipeline:
  - `internal/ctlog` queries crt.sh for raw candidate names (best-effort; a
    failed fetch is logged and the run continues with whatever was gathered).
  - `internal/scope` canonicalizes candidates and builds the discovery set.
  - `internal/core` fans liveness probes (`internal/probe`) out over a
    bounded worker pool and collects the active set.
  - `internal/report` assembles and persists the JSON artifact.

The application uses the Cobra library for command-line structure: the root
command takes the domain as its single positional argument, with flags for
probing, concurrency, pacing and output. Prometheus metrics are served when
--metrics-port is set. Graceful shutdown is handled via context cancellation
triggered by OS signals (SIGINT, SIGTERM); an interrupted run abandons
in-flight probes without corrupting verdicts recorded so far.
*/
package main

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/x-stp/subscope/internal/config"
	"github.com/x-stp/subscope/internal/core"
	"github.com/x-stp/subscope/internal/ctlog"
	"github.com/x-stp/subscope/internal/metrics"
	"github.com/x-stp/subscope/internal/probe"
	"github.com/x-stp/subscope/internal/report"
	"github.com/x-stp/subscope/internal/scope"
)

// Flag variables bound in init.
var (
	noCheck        bool
	outputDir      string
	threads        int
	timeoutSeconds int
	rateLimit      float64
	configFile     string
	metricsPort    int
)

var rootCmd = &cobra.Command{
	Use:   "subscope <domain>",
	Short: "subscope - subdomain discovery over Certificate Transparency logs with liveness probing",
	Long: `subscope queries certificate transparency logs (crt.sh) for subdomains of a
root domain, probes each discovered hostname for HTTP/HTTPS liveness over a
bounded worker pool, and writes a timestamped JSON report per run.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip liveness probing of discovered subdomains")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory for the JSON report")
	rootCmd.Flags().IntVarP(&threads, "threads", "t", config.DefaultThreads, "Number of concurrent liveness probes")
	rootCmd.Flags().IntVar(&timeoutSeconds, "timeout", config.DefaultProbeTimeoutSeconds, "Per-attempt probe timeout in seconds")
	rootCmd.Flags().Float64Var(&rateLimit, "rate-limit", config.DefaultRateLimit, "Probe dispatches per second")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Optional YAML config file")
	rootCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "Prometheus metrics port (0 disables)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig merges defaults, the optional config file, and explicitly
// set flags — in that order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads = threads
	}
	if cmd.Flags().Changed("timeout") {
		cfg.ProbeTimeoutSeconds = timeoutSeconds
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit = rateLimit
	}
	if cmd.Flags().Changed("no-check") {
		cfg.CheckActive = !noCheck
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.MetricsPort = metricsPort
	}
	return cfg, cfg.Validate()
}

// runScan executes one discovery run end to end.
func runScan(cmd *cobra.Command, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.MetricsPort > 0 {
		metrics.EnableMetrics()
		if err := metrics.StartMetricsServer(fmt.Sprintf(":%d", cfg.MetricsPort)); err != nil {
			// Observability never fails a run.
			log.Printf("Failed to start metrics server: %v", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = metrics.StopMetricsServer(shutdownCtx)
			}()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, abandoning in-flight probes...", sig)
		cancel()
	}()

	fmt.Printf("Starting subdomain discovery for %s\n", domain)

	fmt.Println("Fetching subdomains from certificate transparency logs...")
	discovered := scope.NewSet()
	candidates, err := ctlog.NewSource().FetchCandidates(ctx, domain)
	if err != nil {
		// Discovery is best-effort: log and continue with what we have.
		log.Printf("Error fetching from crt.sh: %v", err)
	}
	for _, raw := range candidates {
		discovered.AddRaw(domain, raw)
	}
	fmt.Printf("Found %d potential subdomains\n", discovered.Len())

	active := scope.NewSet()
	if cfg.CheckActive && discovered.Len() > 0 {
		fmt.Println("Checking subdomain activity status...")
		pool := core.NewPool(cfg.Threads, probe.New(cfg.ProbeTimeout()), cfg.RateLimit)
		active = pool.Run(ctx, discovered)
		fmt.Printf("Found %d active subdomains\n", active.Len())
	}

	rep := report.New(domain, discovered, active, cfg.CheckActive, time.Now())
	path, err := rep.Write(cfg.OutputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Report generated at: %s (xxh3 %s)\n", path, rep.Fingerprint())
	return nil
}
