package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-platform/internal/mailer"
	"tenant-platform/internal/model"
	"tenant-platform/pkg/config"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// SubmitInput carries the public signup form fields.
type SubmitInput struct {
	TenantName    string `json:"tenant_name"`
	DesiredDomain string `json:"domain_name"`
	PlanType      string `json:"plan_type"`
	PaymentMode   string `json:"payment_mode"`
	PaymentPlan   string `json:"payment_plan"`
	Email         string `json:"email"`
	Company       string `json:"company"`
	Address       string `json:"address"`
	Logo          string `json:"logo"`
}

// Service is the tenant provisioning engine: it owns the signup queue and
// turns approved requests into schema-backed tenants.
type Service struct {
	store      Store
	mailer     mailer.Mailer
	baseDomain string
	serverName string
}

// NewService creates the provisioning engine.
func NewService(store Store, m mailer.Mailer, cfg *config.TenantConfig) *Service {
	return &Service{
		store:      store,
		mailer:     m,
		baseDomain: cfg.BaseDomain,
		serverName: cfg.ServerName,
	}
}

// FullDomain returns the fully-qualified domain for a desired subdomain.
func (s *Service) FullDomain(desired string) string {
	return desired + "." + s.baseDomain
}

// SubmitRequest validates and persists a Pending tenant request and sends
// the "request received" notification.
func (s *Service) SubmitRequest(ctx context.Context, in *SubmitInput) (*model.TenantRequest, error) {
	if in.TenantName == "" || in.DesiredDomain == "" {
		prometheus.TenantRequestCounter.WithLabelValues("invalid").Inc()
		return nil, ErrMissingField
	}

	// Check-then-insert; the unique index on domains is the backstop for
	// two simultaneous signups racing this check.
	taken, err := s.store.DomainExists(ctx, s.FullDomain(in.DesiredDomain))
	if err != nil {
		return nil, err
	}
	if !taken {
		taken, err = s.store.RequestDomainExists(ctx, in.DesiredDomain)
		if err != nil {
			return nil, err
		}
	}
	if taken {
		prometheus.TenantRequestCounter.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateDomain
	}

	req := &model.TenantRequest{
		TenantName:    in.TenantName,
		DesiredDomain: in.DesiredDomain,
		PlanType:      in.PlanType,
		PaymentMode:   in.PaymentMode,
		PaymentPlan:   in.PaymentPlan,
		Email:         in.Email,
		Company:       in.Company,
		Address:       in.Address,
		Logo:          in.Logo,
		Status:        model.RequestStatusPending,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	prometheus.TenantRequestCounter.WithLabelValues("accepted").Inc()

	if err := s.mailer.Send("Your Tenant Request Has Been Received", in.Email, "welcome.html", map[string]interface{}{
		"name":        in.TenantName,
		"tenant_name": in.TenantName,
		"domain":      in.DesiredDomain,
		"company":     in.Company,
		"email":       in.Email,
		"plan":        in.PlanType,
	}); err != nil {
		return nil, err
	}

	return req, nil
}

// Approve processes a batch of request ids. Each Pending request gets its
// own transaction covering mark-approved, client creation, schema
// creation and primary domain creation; the owner is notified after
// commit. The first failure aborts the remaining batch while earlier
// requests stay committed. Already-approved ids are skipped, so
// re-running a batch cannot duplicate a tenant.
func (s *Service) Approve(ctx context.Context, ids []uint) (int, error) {
	log := logger.FromContext(ctx)

	requests, err := s.store.PendingByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	approved := 0
	for i := range requests {
		req := &requests[i]
		if err := s.approveOne(ctx, req); err != nil {
			prometheus.ProvisioningFailureCounter.Inc()
			return approved, fmt.Errorf("approving %q: %w", req.TenantName, err)
		}
		approved++
		prometheus.TenantProvisionedCounter.Inc()
		log.Info("Tenant provisioned",
			zap.String("tenant_name", req.TenantName),
			zap.String("domain", s.FullDomain(req.DesiredDomain)))
	}

	return approved, nil
}

func (s *Service) approveOne(ctx context.Context, req *model.TenantRequest) error {
	defer func(start time.Time) {
		prometheus.ProvisioningDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	schemaName := DeriveSchemaName(req.TenantName)

	taken, err := s.store.SchemaNameExists(ctx, schemaName)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrSchemaNameTaken, schemaName)
	}

	err = s.store.Transact(ctx, func(tx Store) error {
		if err := tx.MarkApproved(ctx, req.ID); err != nil {
			return err
		}

		client := &model.Client{
			SchemaName:    schemaName,
			TenantName:    req.TenantName,
			ServerName:    s.serverName,
			DesiredDomain: req.DesiredDomain,
			PlanType:      req.PlanType,
			PaymentMode:   req.PaymentMode,
			PaymentPlan:   req.PaymentPlan,
			Email:         req.Email,
			Company:       req.Company,
			Address:       req.Address,
			Logo:          req.Logo,
			Status:        model.TenantStatusActive,
		}
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}

		if err := tx.EnsureSchema(ctx, schemaName); err != nil {
			return err
		}

		return tx.CreatePrimaryDomain(ctx, &model.Domain{
			Domain:    s.FullDomain(req.DesiredDomain),
			TenantID:  client.ID,
			IsPrimary: true,
		})
	})
	if err != nil {
		return err
	}

	return s.mailer.Send("Your Tenant has been successfully created", req.Email, "tenant_created.html", map[string]interface{}{
		"owner_name":  req.TenantName,
		"tenant_name": req.TenantName,
		"company":     req.Company,
		"email":       req.Email,
		"address":     req.Address,
		"domain":      s.FullDomain(req.DesiredDomain),
	})
}

// Reject marks the Pending requests among ids as Rejected. Terminal, no
// side effects.
func (s *Service) Reject(ctx context.Context, ids []uint) (int64, error) {
	prometheus.RecordTenantOperation("reject")
	return s.store.MarkRejected(ctx, ids)
}

// Suspend flips the listed clients to Suspended. Status only; schemas and
// data stay untouched.
func (s *Service) Suspend(ctx context.Context, clientIDs []uint) (int64, error) {
	prometheus.RecordTenantOperation("suspend")
	return s.store.UpdateClientStatus(ctx, clientIDs, model.TenantStatusSuspended)
}

// Activate flips the listed clients back to Active.
func (s *Service) Activate(ctx context.Context, clientIDs []uint) (int64, error) {
	prometheus.RecordTenantOperation("activate")
	return s.store.UpdateClientStatus(ctx, clientIDs, model.TenantStatusActive)
}

// ListRequests returns signup requests, optionally filtered by status.
func (s *Service) ListRequests(ctx context.Context, status string) ([]model.TenantRequest, error) {
	return s.store.ListRequests(ctx, status)
}

// ListClients returns all provisioned tenants.
func (s *Service) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.store.ListClients(ctx)
}

// TenantOrders returns a tenant's subscription orders, billing boundary
// only.
func (s *Service) TenantOrders(ctx context.Context, tenantID uint) ([]model.SubscriptionOrder, error) {
	return s.store.OrdersByTenant(ctx, tenantID)
}

// DeriveSchemaName turns a tenant name into its schema name: lowercase,
// spaces to underscores.
func DeriveSchemaName(tenantName string) string {
	return strings.ReplaceAll(strings.ToLower(tenantName), " ", "_")
}
