package service

import (
	"context"

	"farebroker/internal/domain"
)

// GatewayResult is the outcome of an external gateway call. The core only
// records the result; it does not implement gateway protocols itself.
type GatewayResult struct {
	Success       bool
	TransactionID string
}

// PaymentGateway is the interface to the external payment gateway used for
// non-wallet methods.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error)
	Refund(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error)
}

// MockGateway is an in-memory PaymentGateway for tests and local development.
type MockGateway struct {
	// ChargeError / RefundError inject transient failures.
	ChargeError error
	RefundError error

	// Decline makes charges fail without a gateway error.
	Decline bool

	ChargeCalls int
	RefundCalls int
}

// NewMockGateway creates a gateway that approves everything.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error) {
	g.ChargeCalls++
	if g.ChargeError != nil {
		return nil, g.ChargeError
	}
	if g.Decline {
		return &GatewayResult{Success: false}, nil
	}
	return &GatewayResult{Success: true, TransactionID: "mock-charge-" + reference}, nil
}

func (g *MockGateway) Refund(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error) {
	g.RefundCalls++
	if g.RefundError != nil {
		return nil, g.RefundError
	}
	return &GatewayResult{Success: true, TransactionID: "mock-refund-" + reference}, nil
}
