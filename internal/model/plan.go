package model

import (
	"time"

	"gorm.io/gorm"
)

// Plan is the master list of subscription plans, public schema.
type Plan struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"type:varchar(50);uniqueIndex"`
	Name        string `json:"name" gorm:"type:varchar(100)"`
	Description string `json:"description" gorm:"type:text"`

	MonthlyPrice float64  `json:"monthly_price"`
	YearlyPrice  *float64 `json:"yearly_price,omitempty"`
	Currency     string   `json:"currency" gorm:"type:varchar(10);default:'INR'"`

	// Feature limits; nil means unlimited.
	MaxProducts       *uint `json:"max_products,omitempty"`
	MaxOrdersPerMonth *uint `json:"max_orders_per_month,omitempty"`
	MaxStaffUsers     *uint `json:"max_staff_users,omitempty"`
	MaxStorageMB      *uint `json:"max_storage_mb,omitempty"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
