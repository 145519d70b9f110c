// Package cmd provides command-line interface commands for Argus.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"argus/analyzer"
	"argus/bootstrap"
	"argus/config"
	"argus/core"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI output formatters
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags for the analyze command
var (
	outputJSON bool
	noColor    bool
	iocType    string
)

const analyzeTimeout = 2 * time.Minute

// NewAnalyzeCmd creates the analyze command for one-shot IOC analysis.
func NewAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze <ioc> [ioc...]",
		Short: "Analyze one or more indicators of compromise",
		Long: `Analyze indicators of compromise (IP addresses, domains, URLs, file
hashes, or email addresses) and print a threat intelligence report with
threat score, severity, matched ATT&CK techniques, and related threats.

Without an LLM API key configured the analysis uses the deterministic
builtin description, which is sufficient for scoring and correlation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	analyzeCmd.Flags().StringVarP(&iocType, "type", "t", "", "IOC type (ip, domain, url, hash_md5, hash_sha1, hash_sha256, email); auto-detected when omitted")
	analyzeCmd.Flags().BoolVar(&outputJSON, "json", false, "Output raw JSON")
	analyzeCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return analyzeCmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI runs quiet: engine logs go nowhere unless analysis fails.
	sugar := zap.NewNop().Sugar()

	catalog, err := bootstrap.InitCatalog(cfg, sugar)
	if err != nil {
		return err
	}
	engine := bootstrap.InitLLMEngine(cfg, sugar)
	correlator := core.NewCorrelator(sugar)

	a := analyzer.NewAnalyzer(engine, catalog, correlator, nil, analyzer.Options{
		MaxRelated:   cfg.Analysis.MaxRelated,
		BatchWorkers: cfg.Analysis.BatchWorkers,
	}, sugar)

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	var spin *spinner.Spinner
	if !outputJSON {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " Analyzing indicators..."
		spin.Start()
	}

	results := a.BatchAnalyze(ctx, args, core.IOCType(iocType))

	if spin != nil {
		spin.Stop()
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, result := range results {
		renderResult(result)
	}
	if len(results) < len(args) {
		warningColor.Printf("%d of %d indicators failed to analyze\n", len(args)-len(results), len(args))
	}
	return nil
}
