package ctl

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// requestsCmd groups the signup queue commands
var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Tenant signup queue commands",
	Long: `Manage the tenant signup queue.

Pending requests are created by the public intake form; approving one
provisions the tenant, its schema and its primary domain.`,
}

var requestsStatus string

// requestsListCmd lists signup requests
var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List signup requests",
	Long:  "List signup requests, optionally filtered by status",
	RunE:  runRequestsList,
}

// requestsApproveCmd approves pending requests
var requestsApproveCmd = &cobra.Command{
	Use:   "approve <id>...",
	Short: "Approve signup requests",
	Long: `Approve one or more pending signup requests.

Requests are processed in order; the first failure aborts the rest of
the batch while already-provisioned tenants stay in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRequestsApprove,
}

// requestsRejectCmd rejects pending requests
var requestsRejectCmd = &cobra.Command{
	Use:   "reject <id>...",
	Short: "Reject signup requests",
	Long:  "Mark one or more pending signup requests as rejected",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRequestsReject,
}

func runRequestsList(cmd *cobra.Command, args []string) error {
	client := newClient()

	requests, err := client.ListRequests(requestsStatus)
	if err != nil {
		return fmt.Errorf("failed to list requests: %w", err)
	}
	if len(requests) == 0 {
		fmt.Println("No signup requests found")
		return nil
	}

	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.TenantName,
			r.DesiredDomain,
			r.PlanType,
			r.Email,
			colorStatus(r.Status),
			formatTime(r.RequestedOn),
		})
	}

	renderTable([]string{"ID", "Tenant", "Domain", "Plan", "Email", "Status", "Requested"}, rows)
	return nil
}

func runRequestsApprove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client := newClient()
	approved, err := client.ApproveRequests(ids)
	if err != nil {
		if approved > 0 {
			printError("Batch aborted after %d approval(s): %v", approved, err)
			return nil
		}
		return fmt.Errorf("failed to approve requests: %w", err)
	}

	printSuccess("✓ %d tenant(s) approved and provisioned", approved)
	return nil
}

func runRequestsReject(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client := newClient()
	rejected, err := client.RejectRequests(ids)
	if err != nil {
		return fmt.Errorf("failed to reject requests: %w", err)
	}

	printSuccess("✓ %d request(s) rejected", rejected)
	return nil
}

func init() {
	requestsListCmd.Flags().StringVar(&requestsStatus, "status", "", "filter by status (Pending, Approved, Rejected)")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsApproveCmd)
	requestsCmd.AddCommand(requestsRejectCmd)
}
