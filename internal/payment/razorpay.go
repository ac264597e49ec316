package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GatewayOrder is the remote payment order returned by Razorpay. Amount is
// in minor currency units (paise).
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway abstracts the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// RazorpayGateway implements Gateway against the Razorpay REST API.
type RazorpayGateway struct {
	client    *resty.Client
	keySecret string
}

// NewRazorpayGateway creates a gateway client. Create-order calls are
// retried with backoff; signature verification is local and never retried.
func NewRazorpayGateway(baseURL, keyID, keySecret string) *RazorpayGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	return &RazorpayGateway{
		client:    client,
		keySecret: keySecret,
	}
}

// CreateOrder creates a remote payment order.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	var order GatewayOrder

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(createOrderRequest{
			Amount:         amountMinor,
			Currency:       currency,
			Receipt:        receipt,
			PaymentCapture: 1,
		}).
		SetResult(&order).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway create order: status %d: %s", resp.StatusCode(), resp.String())
	}

	return &order, nil
}

// VerifySignature checks the payment confirmation signature locally.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}
