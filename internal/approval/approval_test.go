package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsk_NonInteractiveAutoDenies(t *testing.T) {
	if IsInteractive() {
		t.Skip("test process stdin is a terminal; auto-deny path not exercised")
	}
	result := Ask(Prompt{Recipient: "agent://x", Amount: 100, Currency: "USDC"})
	assert.False(t, result.Approved)
	assert.Equal(t, "auto_deny_non_interactive", result.UserAction)
}
