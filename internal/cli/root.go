// Package cli wires the paymentguard command-line entrypoint: a thin
// dry-run harness around the gate, for operators to validate a policy
// file and a candidate intent before wiring a real adapter.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	policyPath string
	logPath    string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "paymentguard",
	Short: "PaymentGuard - transaction firewall for autonomous payment agents",
	Long: `PaymentGuard sits between an autonomous agent and its payment backends,
running every proposed payment through a deterministic pipeline — injection
scanning, intent-drift comparison, policy limits, and human approval —
before it is ever allowed to reach an adapter.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to policy YAML file (default: ~/.paymentguard/policy.yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ~/.paymentguard/audit.jsonl)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug-level operator logging")
}

func Execute() error {
	return rootCmd.Execute()
}
