package model

import "time"

// Subscription order status values.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// SubscriptionOrder is one billing intent for a tenant: an upgrade,
// downgrade or renewal of a plan, one row per billing cycle. Payment
// confirmation is driven by the gateway webhook, outside this core.
type SubscriptionOrder struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	TenantID      uint    `json:"tenant_id" gorm:"index;not null"`
	Tenant        *Client `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	PlanID        uint    `json:"plan_id" gorm:"index;not null"`
	Plan          *Plan   `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	BillingPeriod string  `json:"billing_period" gorm:"type:varchar(20);default:'monthly'"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency" gorm:"type:varchar(10);default:'INR'"`

	Status      string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is one payment attempt for a SubscriptionOrder. A retried
// checkout produces multiple rows against the same order.
type Payment struct {
	ID      uint               `json:"id" gorm:"primaryKey"`
	OrderID uint               `json:"order_id" gorm:"index;not null"`
	Order   *SubscriptionOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`

	Provider          string `json:"provider" gorm:"type:varchar(50)"`
	ProviderPaymentID string `json:"provider_payment_id" gorm:"type:varchar(200)"`
	ProviderOrderID   string `json:"provider_order_id" gorm:"type:varchar(200)"`

	Amount float64 `json:"amount"`
	Status string  `json:"status" gorm:"type:varchar(20);default:'created'"`

	// Raw gateway payload kept for reconciliation.
	RawPayload string `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
