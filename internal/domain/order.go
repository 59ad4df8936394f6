package domain

import "time"

const OrderSourcePOS = "pos"

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID            string      `json:"id"`
	PaymentMethod string      `json:"paymentMethod"`
	Source        string      `json:"source"`
	Status        OrderStatus `json:"status"`
	TotalCents    int64       `json:"totalCents"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	VariantID      string `json:"variantId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}
