package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"tenant-platform/internal/model"
	"tenant-platform/internal/tenant"
	"tenant-platform/prometheus"
)

// Schema names reach DDL, so they are restricted to what DeriveSchemaName
// can emit plus digits.
var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// TenantStore is the gorm-backed store of the provisioning engine.
type TenantStore struct {
	db *gorm.DB
}

// NewTenantStore creates a tenant store.
func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

// Transact implements tenant.Store. The callback receives a store bound
// to the transaction; schema DDL issued through it rides the same
// connection and rolls back with the rest of the request.
func (s *TenantStore) Transact(ctx context.Context, fn func(tenant.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TenantStore{db: tx})
	})
}

// EnsureSchema implements tenant.SchemaProvisioner with
// CREATE SCHEMA IF NOT EXISTS, which makes re-provisioning a no-op.
func (s *TenantStore) EnsureSchema(ctx context.Context, name string) error {
	if !schemaNamePattern.MatchString(name) {
		return fmt.Errorf("invalid schema name %q", name)
	}
	return s.db.WithContext(ctx).
		Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, name)).Error
}

// CreateRequest implements tenant.Store.
func (s *TenantStore) CreateRequest(ctx context.Context, req *model.TenantRequest) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return s.db.WithContext(ctx).Create(req).Error
}

// PendingByIDs implements tenant.Store.
func (s *TenantStore) PendingByIDs(ctx context.Context, ids []uint) ([]model.TenantRequest, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var requests []model.TenantRequest
	err := s.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, model.RequestStatusPending).
		Order("id").
		Find(&requests).Error
	return requests, err
}

// ListRequests implements tenant.Store.
func (s *TenantStore) ListRequests(ctx context.Context, status string) ([]model.TenantRequest, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	q := s.db.WithContext(ctx).Order("requested_on DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []model.TenantRequest
	err := q.Find(&requests).Error
	return requests, err
}

// MarkApproved implements tenant.Store.
func (s *TenantStore) MarkApproved(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return s.db.WithContext(ctx).
		Model(&model.TenantRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_approved": true,
			"status":      model.RequestStatusApproved,
		}).Error
}

// MarkRejected implements tenant.Store.
func (s *TenantStore) MarkRejected(ctx context.Context, ids []uint) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(&model.TenantRequest{}).
		Where("id IN ? AND status = ?", ids, model.RequestStatusPending).
		Update("status", model.RequestStatusRejected)
	return res.RowsAffected, res.Error
}

// DomainExists implements tenant.Store.
func (s *TenantStore) DomainExists(ctx context.Context, domain string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Domain{}).
		Where("domain = ?", domain).
		Count(&count).Error
	return count > 0, err
}

// RequestDomainExists implements tenant.Store. The match is
// case-sensitive, same as the domain column itself.
func (s *TenantStore) RequestDomainExists(ctx context.Context, desiredDomain string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.TenantRequest{}).
		Where("desired_domain = ?", desiredDomain).
		Count(&count).Error
	return count > 0, err
}

// SchemaNameExists implements tenant.Store.
func (s *TenantStore) SchemaNameExists(ctx context.Context, schemaName string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Client{}).
		Where("schema_name = ?", schemaName).
		Count(&count).Error
	return count > 0, err
}

// CreateClient implements tenant.Store.
func (s *TenantStore) CreateClient(ctx context.Context, client *model.Client) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return s.db.WithContext(ctx).Create(client).Error
}

// CreatePrimaryDomain implements tenant.Store. At most one primary domain
// per tenant: existing primaries are demoted in the same statement batch.
func (s *TenantStore) CreatePrimaryDomain(ctx context.Context, domain *model.Domain) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if domain.IsPrimary {
		if err := s.db.WithContext(ctx).
			Model(&model.Domain{}).
			Where("tenant_id = ? AND is_primary = ?", domain.TenantID, true).
			Update("is_primary", false).Error; err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Create(domain).Error
}

// UpdateClientStatus implements tenant.Store.
func (s *TenantStore) UpdateClientStatus(ctx context.Context, ids []uint, status string) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(&model.Client{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// ListClients implements tenant.Store.
func (s *TenantStore) ListClients(ctx context.Context) ([]model.Client, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var clients []model.Client
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&clients).Error
	return clients, err
}

// OrdersByTenant implements tenant.Store.
func (s *TenantStore) OrdersByTenant(ctx context.Context, tenantID uint) ([]model.SubscriptionOrder, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.SubscriptionOrder
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
