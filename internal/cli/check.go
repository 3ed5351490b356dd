package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gzhole/paymentguard/internal/adapter"
	"github.com/gzhole/paymentguard/internal/approval"
	"github.com/gzhole/paymentguard/internal/config"
	"github.com/gzhole/paymentguard/internal/firewall"
	"github.com/gzhole/paymentguard/internal/gate"
	"github.com/gzhole/paymentguard/internal/logging"
	"github.com/gzhole/paymentguard/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <intent.json>",
	Short: "Dry-run a payment intent through the firewall and policy engine",
	Long: `Check loads a PolicyConfig/FirewallConfig from the policy YAML file and
a candidate IntentRequest from a JSON file, then reports the verdict the
full gate would produce — without ever invoking an adapter or recording
spend.

Example:
  paymentguard check --policy ./policy.yaml intent.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, logPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read intent file: %w", err)
	}
	var request types.IntentRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return fmt.Errorf("failed to parse intent JSON: %w", err)
	}

	log, err := logging.NewOperatorLogger(debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	auditLog, err := logging.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer auditLog.Close()

	var fwOpts []firewall.Option
	if cfg.Firewall.IntentDiffThreshold > 0 {
		fwOpts = append(fwOpts, firewall.WithIntentDiffThreshold(cfg.Firewall.IntentDiffThreshold))
	}
	if cfg.Firewall.OriginalInstruction != "" {
		fwOpts = append(fwOpts, firewall.WithOriginalInstruction(cfg.Firewall.OriginalInstruction))
	}
	if cfg.Firewall.FailOpen {
		fwOpts = append(fwOpts, firewall.WithWarnFunc(func(msg string) { log.Warn(msg) }))
	}
	fw := firewall.New(fwOpts...)

	gateOpts := []gate.Option{gate.WithFirewall(fw), gate.WithApproval(approval.Ask), gate.WithLogger(log), gate.WithAuditLogger(auditLog)}
	if !cfg.Firewall.Enabled {
		gateOpts = append(gateOpts, gate.WithFirewallDisabled())
	}
	g := gate.New(cfg.Policy, adapter.NewRegistry(), gateOpts...)

	result := g.Check(request)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
