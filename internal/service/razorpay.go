package service

import (
	"fmt"

	"lms_backend/internal/config"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway PaymentGateway 的生产实现
type RazorpayGateway struct {
	Client *razorpay.Client
}

func NewRazorpayGateway(cfg *config.RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		Client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
	}
}

func (g *RazorpayGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.Client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("create razorpay order: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order response missing id")
	}
	return orderID, nil
}
