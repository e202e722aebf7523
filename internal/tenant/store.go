package tenant

import (
	"context"

	"tenant-platform/internal/model"
)

// SchemaProvisioner creates isolated per-tenant namespaces. EnsureSchema
// is idempotent: a pre-existing schema with the same name is accepted.
type SchemaProvisioner interface {
	EnsureSchema(ctx context.Context, name string) error
}

// Store is the persistence boundary of the provisioning engine. Transact
// runs fn against a transactional view of the store; the Postgres
// implementation wraps it in one database transaction so a mid-request
// failure never leaves an Approved request without its Client.
type Store interface {
	SchemaProvisioner

	CreateRequest(ctx context.Context, req *model.TenantRequest) error
	// PendingByIDs returns the Pending requests among ids, in id order.
	// Non-pending ids are silently skipped, which makes re-running an
	// approval batch a no-op for already-approved requests.
	PendingByIDs(ctx context.Context, ids []uint) ([]model.TenantRequest, error)
	ListRequests(ctx context.Context, status string) ([]model.TenantRequest, error)
	MarkApproved(ctx context.Context, id uint) error
	MarkRejected(ctx context.Context, ids []uint) (int64, error)

	DomainExists(ctx context.Context, domain string) (bool, error)
	RequestDomainExists(ctx context.Context, desiredDomain string) (bool, error)
	SchemaNameExists(ctx context.Context, schemaName string) (bool, error)

	CreateClient(ctx context.Context, client *model.Client) error
	// CreatePrimaryDomain inserts the domain and demotes any existing
	// primary domain of the same tenant.
	CreatePrimaryDomain(ctx context.Context, domain *model.Domain) error
	UpdateClientStatus(ctx context.Context, ids []uint, status string) (int64, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	OrdersByTenant(ctx context.Context, tenantID uint) ([]model.SubscriptionOrder, error)

	Transact(ctx context.Context, fn func(Store) error) error
}
