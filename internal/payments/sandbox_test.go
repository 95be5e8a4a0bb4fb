package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxAdapterInitiate(t *testing.T) {
	adapter := NewSandboxAdapter("MERCHANT123", "topsecret", "https://sandbox.example.com/checkout")

	session, err := adapter.Initiate(context.Background(), InitiateRequest{
		TransactionID: "TXN-abc",
		Amount:        150.5,
		Method:        "card",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.example.com/checkout", session.PaymentURL)
	assert.Equal(t, "150.50", session.Data["total_amount"])
	assert.Equal(t, "TXN-abc", session.Data["transaction_id"])
	assert.Equal(t, "MERCHANT123", session.Data["merchant_code"])

	raw := fmt.Sprintf("total_amount=%s,transaction_id=%s,merchant_code=%s", "150.50", "TXN-abc", "MERCHANT123")
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write([]byte(raw))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, session.Data["signature"])
}

func TestSandboxAdapterVerify(t *testing.T) {
	adapter := NewSandboxAdapter("MERCHANT123", "topsecret", "https://sandbox.example.com/checkout")
	ctx := context.Background()

	_, err := adapter.Initiate(ctx, InitiateRequest{TransactionID: "TXN-known", Amount: 40})
	require.NoError(t, err)

	verdict, err := adapter.Verify(ctx, VerifyRequest{TransactionID: "TXN-known"})
	require.NoError(t, err)
	assert.True(t, verdict.Succeeded)

	verdict, err = adapter.Verify(ctx, VerifyRequest{TransactionID: "TXN-never-initiated"})
	require.NoError(t, err)
	assert.False(t, verdict.Succeeded)
}

func TestManagerRouting(t *testing.T) {
	manager := NewManager()
	manager.RegisterGateway("card", NewSandboxAdapter("M1", "s1", "https://card.example.com"))
	manager.RegisterGateway("wallet", NewSandboxAdapter("M2", "s2", "https://wallet.example.com"))

	ctx := context.Background()

	session, err := manager.Initiate(ctx, InitiateRequest{TransactionID: "TXN-1", Amount: 10, Method: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, "https://wallet.example.com", session.PaymentURL)
	assert.Equal(t, "M2", session.Data["merchant_code"])

	verdict, err := manager.Verify(ctx, VerifyRequest{Method: "wallet", TransactionID: "TXN-1"})
	require.NoError(t, err)
	assert.True(t, verdict.Succeeded)

	// same txn through a different provider has no session
	verdict, err = manager.Verify(ctx, VerifyRequest{Method: "card", TransactionID: "TXN-1"})
	require.NoError(t, err)
	assert.False(t, verdict.Succeeded)

	_, err = manager.Initiate(ctx, InitiateRequest{Method: "upi"})
	assert.ErrorContains(t, err, "gateway not registered")

	_, err = manager.Verify(ctx, VerifyRequest{Method: "upi"})
	assert.ErrorContains(t, err, "gateway not registered")
}
