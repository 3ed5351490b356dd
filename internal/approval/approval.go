// Package approval implements the human-approval gate: a terminal
// prompt shown when a payment intent exceeds the configured approval
// threshold. Non-interactive sessions auto-deny rather than blocking
// on input that will never arrive.
package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Result carries the approver's decision plus a machine-readable
// action tag for audit logging.
type Result struct {
	Approved   bool
	UserAction string
}

// Prompt describes the payment intent shown to the human approver.
type Prompt struct {
	Recipient   string
	Amount      float64
	Currency    string
	Purpose     string
	Protocol    string
	TriggeredBy []string
}

// Callback is the shape the gate expects for the approval step.
type Callback func(p Prompt) Result

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask renders the prompt to stderr and reads a y/n-style decision from
// stdin. Outside a terminal it auto-denies rather than hanging.
func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{Approved: false, UserAction: "auto_deny_non_interactive"}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║              ⚠️  PAYMENT APPROVAL REQUIRED                     ║")
	fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Recipient: %s\n", p.Recipient)
	fmt.Fprintf(os.Stderr, "Amount:    %v %s\n", p.Amount, p.Currency)
	if p.Protocol != "" {
		fmt.Fprintf(os.Stderr, "Protocol:  %s\n", p.Protocol)
	}
	if p.Purpose != "" {
		fmt.Fprintf(os.Stderr, "Purpose:   %s\n", p.Purpose)
	}
	fmt.Fprintln(os.Stderr, "")

	if len(p.TriggeredBy) > 0 {
		fmt.Fprintf(os.Stderr, "Triggered by: %s\n", strings.Join(p.TriggeredBy, ", "))
		fmt.Fprintln(os.Stderr, "")
	}

	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  [a] Approve once - send this payment")
	fmt.Fprintln(os.Stderr, "  [d] Deny - block this payment")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{Approved: false, UserAction: "error_reading_input"}
		}

		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "a", "approve", "yes", "y":
			return Result{Approved: true, UserAction: "approve_once"}
		case "d", "deny", "no", "n":
			return Result{Approved: false, UserAction: "deny"}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
