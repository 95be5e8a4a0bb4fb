package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
)

// SandboxAdapter is a self-contained provider used outside production. It
// signs checkout sessions the way a real provider would and settles every
// initiated transaction as successful on verify.
type SandboxAdapter struct {
	MerchantCode string
	SecretKey    string
	CheckoutURL  string

	mu       sync.Mutex
	sessions map[string]float64
}

func NewSandboxAdapter(merchant, secret, checkoutURL string) *SandboxAdapter {
	return &SandboxAdapter{
		MerchantCode: merchant,
		SecretKey:    secret,
		CheckoutURL:  checkoutURL,
		sessions:     make(map[string]float64),
	}
}

func (a *SandboxAdapter) Initiate(ctx context.Context, req InitiateRequest) (*CheckoutSession, error) {
	total := fmt.Sprintf("%.2f", req.Amount)

	raw := fmt.Sprintf("total_amount=%s,transaction_id=%s,merchant_code=%s", total, req.TransactionID, a.MerchantCode)
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(raw))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	a.mu.Lock()
	a.sessions[req.TransactionID] = req.Amount
	a.mu.Unlock()

	return &CheckoutSession{
		PaymentURL: a.CheckoutURL,
		Data: map[string]string{
			"total_amount":   total,
			"transaction_id": req.TransactionID,
			"merchant_code":  a.MerchantCode,
			"signature":      signature,
		},
	}, nil
}

func (a *SandboxAdapter) Verify(ctx context.Context, req VerifyRequest) (Verdict, error) {
	a.mu.Lock()
	_, ok := a.sessions[req.TransactionID]
	a.mu.Unlock()
	return Verdict{Succeeded: ok}, nil
}
