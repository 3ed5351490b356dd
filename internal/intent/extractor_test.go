package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_BareDollarAmount(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("please pay $50 for hosting")
	require.NotNil(t, si.Amount)
	assert.Equal(t, 50.0, *si.Amount)
	require.NotNil(t, si.Currency)
	assert.Equal(t, "USD", *si.Currency)
}

func TestExtract_AmountThenCurrencyOverridesDollarBaseline(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay $50 but actually send 75 USDC instead")
	require.NotNil(t, si.Amount)
	assert.Equal(t, 75.0, *si.Amount)
	require.NotNil(t, si.Currency)
	assert.Equal(t, "USDC", *si.Currency)
}

func TestExtract_DollarWordDoesNotOverrideBaseline(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay $50, that's 50 dollars total")
	require.NotNil(t, si.Amount)
	assert.Equal(t, 50.0, *si.Amount)
	assert.Equal(t, "USD", *si.Currency)
}

func TestExtract_CurrencyThenAmountFallback(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("transfer ETH 2.5 to the vendor")
	require.NotNil(t, si.Amount)
	assert.Equal(t, 2.5, *si.Amount)
	require.NotNil(t, si.Currency)
	assert.Equal(t, "ETH", *si.Currency)
}

func TestExtract_CommasInNumeralsIgnored(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay $1,250.50 now")
	require.NotNil(t, si.Amount)
	assert.Equal(t, 1250.50, *si.Amount)
}

func TestExtract_RecipientAgentURIWins(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay 10 USDC to agent://api-provider.verified or https://fallback.example")
	require.NotNil(t, si.Recipient)
	assert.Equal(t, "agent://api-provider.verified", *si.Recipient)
}

func TestExtract_RecipientHexAddress(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("send to 0x1234567890123456789012345678901234567890 today")
	require.NotNil(t, si.Recipient)
	assert.Equal(t, "0x1234567890123456789012345678901234567890", *si.Recipient)
}

func TestExtract_RecipientENS(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay vendor.eth for services")
	require.NotNil(t, si.Recipient)
	assert.Equal(t, "vendor.eth", *si.Recipient)
}

func TestExtract_RecipientHTTPSURL(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay https://merchant.example/invoice/42")
	require.NotNil(t, si.Recipient)
	assert.Equal(t, "https://merchant.example/invoice/42", *si.Recipient)
}

func TestExtract_DeadlineWithin(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay within 3 days")
	require.NotNil(t, si.Deadline)
	assert.Equal(t, "3d", *si.Deadline)
}

func TestExtract_DeadlineByNamedTime(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay by tomorrow")
	require.NotNil(t, si.Deadline)
	assert.Equal(t, "tomorrow", *si.Deadline)
}

func TestExtract_DeadlineBareDuration(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay 2h from now")
	require.NotNil(t, si.Deadline)
	assert.Equal(t, "2h", *si.Deadline)
}

func TestExtract_ResidualPurposeStripsFillersAndSpans(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay 50 USDC to agent://api-provider.verified for API usage this month")
	require.NotNil(t, si.ResidualPurpose)
	assert.Equal(t, "API usage this month", *si.ResidualPurpose)
}

func TestExtract_ResidualPurposeEmptyBecomesNil(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("pay 50 USDC to agent://api-provider.verified")
	assert.Nil(t, si.ResidualPurpose)
}

func TestExtract_NoMatchesLeavesAllNil(t *testing.T) {
	e := NewExtractor()
	si := e.Extract("hello there")
	assert.Nil(t, si.Amount)
	assert.Nil(t, si.Currency)
	assert.Nil(t, si.Recipient)
	assert.Nil(t, si.Deadline)
}
