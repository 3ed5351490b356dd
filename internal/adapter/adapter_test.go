package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/paymentguard/internal/types"
)

type stubAdapter struct {
	name    string
	handles bool
	result  types.PaymentResult
}

func (s stubAdapter) Name() string                             { return s.name }
func (s stubAdapter) CanHandle(pi *types.PaymentIntent) bool    { return s.handles }
func (s stubAdapter) Execute(pi *types.PaymentIntent) types.PaymentResult { return s.result }

func TestResolve_CaseInsensitiveExactMatch(t *testing.T) {
	r := NewRegistry(stubAdapter{name: "x402"})
	a, ok := r.Resolve("X402")
	require.True(t, ok)
	assert.Equal(t, "x402", a.Name())
}

func TestResolve_NotFound(t *testing.T) {
	r := NewRegistry(stubAdapter{name: "x402"})
	_, ok := r.Resolve("ap2")
	assert.False(t, ok)
}

func TestResolve_EarlierRegistrationWinsOnNameCollision(t *testing.T) {
	first := stubAdapter{name: "x402", result: types.PaymentResult{TransactionID: "first"}}
	second := stubAdapter{name: "x402", result: types.PaymentResult{TransactionID: "second"}}
	r := NewRegistry(first, second)

	a, ok := r.Resolve("x402")
	require.True(t, ok)
	assert.Equal(t, "first", a.Execute(nil).TransactionID)
}

func TestRegister_AppendsAfterConstruction(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())
	r.Register(stubAdapter{name: "ap2"})
	assert.Equal(t, 1, r.Len())
	_, ok := r.Resolve("ap2")
	assert.True(t, ok)
}
