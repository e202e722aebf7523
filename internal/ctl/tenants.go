package ctl

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// tenantsCmd groups the tenant lifecycle commands
var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "Tenant lifecycle commands",
	Long: `Manage provisioned tenants: list them with their usage summary,
suspend or reactivate them, and inspect their subscription orders.

Suspend and activate flip the tenant's status only; schemas and data
stay untouched.`,
}

// tenantsListCmd lists provisioned tenants
var tenantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	Long:  "List all provisioned tenants",
	RunE:  runTenantsList,
}

// tenantsSuspendCmd suspends tenants
var tenantsSuspendCmd = &cobra.Command{
	Use:   "suspend <id>...",
	Short: "Suspend tenants",
	Long:  "Suspend one or more tenants, disabling their access",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTenantsSuspend,
}

// tenantsActivateCmd reactivates tenants
var tenantsActivateCmd = &cobra.Command{
	Use:   "activate <id>...",
	Short: "Activate tenants",
	Long:  "Reactivate one or more suspended tenants",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTenantsActivate,
}

// tenantsOrdersCmd shows a tenant's subscription orders
var tenantsOrdersCmd = &cobra.Command{
	Use:   "orders <id>",
	Short: "Show tenant orders",
	Long:  "List a tenant's subscription orders",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantsOrders,
}

func runTenantsList(cmd *cobra.Command, args []string) error {
	client := newClient()

	tenants, err := client.ListTenants()
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}
	if len(tenants) == 0 {
		fmt.Println("No tenants found")
		return nil
	}

	rows := make([][]string, 0, len(tenants))
	for _, t := range tenants {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.TenantName,
			t.SchemaName,
			t.DesiredDomain,
			t.PlanType,
			colorStatus(t.Status),
			strconv.Itoa(t.ActiveUsers),
			fmt.Sprintf("%.1f", t.StorageUsedMB),
		})
	}

	renderTable([]string{"ID", "Tenant", "Schema", "Domain", "Plan", "Status", "Users", "Storage MB"}, rows)
	return nil
}

func runTenantsSuspend(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client := newClient()
	updated, err := client.SuspendTenants(ids)
	if err != nil {
		return fmt.Errorf("failed to suspend tenants: %w", err)
	}

	printSuccess("✓ %d tenant(s) suspended", updated)
	return nil
}

func runTenantsActivate(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client := newClient()
	updated, err := client.ActivateTenants(ids)
	if err != nil {
		return fmt.Errorf("failed to activate tenants: %w", err)
	}

	printSuccess("✓ %d tenant(s) activated", updated)
	return nil
}

func runTenantsOrders(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client := newClient()
	orders, err := client.TenantOrders(ids[0])
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Println("No orders found")
		return nil
	}

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatUint(uint64(o.PlanID), 10),
			o.BillingPeriod,
			fmt.Sprintf("%.2f %s", o.Amount, o.Currency),
			colorStatus(o.Status),
			formatTimePtr(o.PaidAt),
		})
	}

	renderTable([]string{"ID", "Plan", "Period", "Amount", "Status", "Paid At"}, rows)
	return nil
}

func init() {
	tenantsCmd.AddCommand(tenantsListCmd)
	tenantsCmd.AddCommand(tenantsSuspendCmd)
	tenantsCmd.AddCommand(tenantsActivateCmd)
	tenantsCmd.AddCommand(tenantsOrdersCmd)
}
