package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/entrygate/entrygate/internal/probe"
)

// checkCmd probes every configured endpoint exactly once. It never
// blocks; it exists so a human debugging a stuck gate can see which
// dependency is down without reading poll logs.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe each configured endpoint once and report the result",
	Long: `Check makes a single connection attempt against every configured wait
target and prints the outcome. The exit code is 0 when every endpoint is
reachable and 1 otherwise, so it doubles as a scriptable health probe.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

type checkResult struct {
	Endpoint  string  `json:"endpoint"`
	Address   string  `json:"address"`
	Up        bool    `json:"up"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfigOrExit()
	log := newLogger(cfg)

	prober := probe.New(cfg.PollInterval, cfg.DialTimeout, log)

	results := make([]checkResult, 0, len(cfg.Endpoints()))
	anyDown := false

	for _, ep := range cfg.Endpoints() {
		status := prober.Check(cmd.Context(), ep)
		result := checkResult{
			Endpoint:  ep.String(),
			Address:   ep.Addr(),
			Up:        status.Up,
			LatencyMS: float64(status.Latency.Microseconds()) / 1000.0,
		}
		if status.Err != nil {
			result.Error = status.Err.Error()
			anyDown = true
		}
		results = append(results, result)
	}

	if outputFormat == "json" {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Endpoint", "Address", "Status", "Latency")

		for _, result := range results {
			status := "up"
			if !result.Up {
				status = "down"
			}
			table.Append(
				result.Endpoint,
				result.Address,
				status,
				fmt.Sprintf("%.1fms", result.LatencyMS),
			)
		}

		table.Render()
	}

	if anyDown {
		os.Exit(1)
	}
	return nil
}
