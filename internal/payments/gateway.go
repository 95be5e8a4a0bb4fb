package payments

import "context"

// Gateway defines a common interface for all payment providers.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*CheckoutSession, error)
	Verify(ctx context.Context, req VerifyRequest) (Verdict, error)
}
