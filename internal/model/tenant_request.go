package model

import "time"

// Tenant request status values.
const (
	RequestStatusPending  = "Pending"
	RequestStatusApproved = "Approved"
	RequestStatusRejected = "Rejected"
)

// TenantRequest is an unapproved signup from the public intake form.
// Pending requests turn into a Client + Domain pair on admin approval, or
// terminate as Rejected with no side effects.
type TenantRequest struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	TenantName    string `json:"tenant_name" gorm:"type:varchar(100)"`
	DesiredDomain string `json:"desired_domain" gorm:"type:varchar(150);index"`

	PlanType    string `json:"plan_type" gorm:"type:varchar(50);default:'Basic'"`
	PaymentMode string `json:"payment_mode" gorm:"type:varchar(10);default:'COD'"`
	PaymentPlan string `json:"payment_plan" gorm:"type:varchar(10);default:'Monthly'"`

	Email   string `json:"email" gorm:"type:varchar(254)"`
	Company string `json:"company" gorm:"type:varchar(200)"`
	Address string `json:"address" gorm:"type:text"`
	Logo    string `json:"logo" gorm:"type:varchar(255)"`

	RequestedOn time.Time `json:"requested_on" gorm:"autoCreateTime"`
	IsApproved  bool      `json:"is_approved" gorm:"default:false"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'Pending'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
