package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant status values.
const (
	TenantStatusActive    = "Active"
	TenantStatusSuspended = "Suspended"
	TenantStatusCancelled = "Cancelled"
)

// Client is one provisioned tenant in the public schema. Each client owns
// exactly one isolated Postgres schema named SchemaName.
type Client struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	SchemaName    string `json:"schema_name" gorm:"type:varchar(63);uniqueIndex"`
	TenantName    string `json:"tenant_name" gorm:"type:varchar(100)"`
	ServerName    string `json:"server_name" gorm:"type:varchar(150)"`
	DesiredDomain string `json:"desired_domain" gorm:"type:varchar(150)"`

	Email   string `json:"email" gorm:"type:varchar(254)"`
	Company string `json:"company" gorm:"type:varchar(200)"`
	Address string `json:"address" gorm:"type:text"`
	Logo    string `json:"logo" gorm:"type:varchar(255)"`

	PlanID   *uint  `json:"plan_id,omitempty" gorm:"index"`
	Plan     *Plan  `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	PlanType string `json:"plan_type" gorm:"type:varchar(50);default:'Basic'"`

	SubscriptionStart time.Time  `json:"subscription_start" gorm:"autoCreateTime"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
	OnTrial           bool       `json:"on_trial" gorm:"default:false"`
	TrialEnd          *time.Time `json:"trial_end,omitempty"`

	Status string `json:"status" gorm:"type:varchar(20);default:'Active'"`

	// Usage gauges, maintained by the tenant-side workloads.
	StorageUsedMB  float64    `json:"storage_used_mb" gorm:"default:0"`
	ProductCount   int        `json:"product_count" gorm:"default:0"`
	OrderCount     int        `json:"order_count" gorm:"default:0"`
	VisitorCount7d int        `json:"visitor_count_7d" gorm:"default:0"`
	VisitorCount30 int        `json:"visitor_count_30d" gorm:"column:visitor_count_30d;default:0"`
	ActiveUsers    int        `json:"active_users" gorm:"default:0"`
	LastLogin      *time.Time `json:"last_login,omitempty"`

	TotalOrdersValue float64    `json:"total_orders_value" gorm:"default:0"`
	LastPaymentDate  *time.Time `json:"last_payment_date,omitempty"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	PaymentMode      string     `json:"payment_mode" gorm:"type:varchar(10);default:'COD'"`
	PaymentStatus    string     `json:"payment_status" gorm:"type:varchar(30);default:'Unpaid'"`
	PaymentPlan      string     `json:"payment_plan" gorm:"type:varchar(20);default:'Weekly'"`

	CreatedAt time.Time      `json:"created_on"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasActiveSubscription reports whether the subscription window is still
// open. A missing end date counts as not subscribed.
func (c *Client) HasActiveSubscription() bool {
	if c.SubscriptionEnd == nil {
		return false
	}
	return !c.SubscriptionEnd.Before(time.Now())
}

// IsOnTrial reports whether the tenant is currently inside a trial period.
func (c *Client) IsOnTrial() bool {
	if !c.OnTrial || c.TrialEnd == nil {
		return false
	}
	return !c.TrialEnd.Before(time.Now())
}

// Domain maps a hostname to a tenant. At most one primary domain per
// tenant; creating a new primary demotes the previous one.
type Domain struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Domain    string    `json:"domain" gorm:"type:varchar(253);uniqueIndex"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	Tenant    *Client   `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	IsPrimary bool      `json:"is_primary" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
