package payments

type InitiateRequest struct {
	TransactionID string
	Amount        float64
	Method        string
	ProductName   string
	CustomerName  string
	CustomerEmail string
}

// CheckoutSession is what the client needs to complete the payment with
// the provider.
type CheckoutSession struct {
	PaymentURL string
	Data       map[string]string // provider form fields
}

type VerifyRequest struct {
	Method        string
	TransactionID string
}

type Verdict struct {
	Succeeded bool
}
