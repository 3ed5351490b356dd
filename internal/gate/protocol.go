package gate

import (
	"regexp"
	"strings"

	"github.com/gzhole/paymentguard/internal/types"
)

var (
	merchantSchemePattern = regexp.MustCompile(`(?i)^(merchant|shop|store):`)
	merchantSuffixPattern = regexp.MustCompile(`(?i)\.(merchant|shop)$`)
)

// DetectProtocol resolves a protocol tag from recipient/intent shape
// when the intent didn't already carry one. First match wins, per
// spec §6's table.
func DetectProtocol(pi *types.PaymentIntent) types.Protocol {
	if pi.Escrow != nil {
		return types.ProtocolEscrow
	}
	to := pi.Recipient
	switch {
	case strings.HasPrefix(to, "http://"), strings.HasPrefix(to, "https://"):
		return types.ProtocolX402
	case merchantSchemePattern.MatchString(to), merchantSuffixPattern.MatchString(to):
		return types.ProtocolACP
	case strings.HasPrefix(to, "agent://"), strings.HasPrefix(to, "did:"):
		return types.ProtocolAP2
	default:
		return types.ProtocolX402
	}
}
