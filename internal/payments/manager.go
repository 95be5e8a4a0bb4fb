package payments

import (
	"context"
	"fmt"
)

// Manager routes payment calls to the provider registered for the method.
type Manager struct {
	gateways map[string]Gateway
}

func NewManager() *Manager {
	return &Manager{gateways: make(map[string]Gateway)}
}

func (m *Manager) RegisterGateway(method string, gateway Gateway) {
	m.gateways[method] = gateway
}

func (m *Manager) Initiate(ctx context.Context, req InitiateRequest) (*CheckoutSession, error) {
	gateway, ok := m.gateways[req.Method]
	if !ok {
		return nil, fmt.Errorf("gateway not registered: %s", req.Method)
	}
	return gateway.Initiate(ctx, req)
}

func (m *Manager) Verify(ctx context.Context, req VerifyRequest) (Verdict, error) {
	gateway, ok := m.gateways[req.Method]
	if !ok {
		return Verdict{}, fmt.Errorf("gateway not registered: %s", req.Method)
	}
	return gateway.Verify(ctx, req)
}
