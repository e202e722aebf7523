package ctl

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// renderTable prints rows under the given headers in the shared table
// style.
func renderTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("No data to display")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor},
	)

	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// printSuccess prints a success message
func printSuccess(message string, args ...interface{}) {
	color.Green(message, args...)
}

// printError prints an error message
func printError(message string, args ...interface{}) {
	color.Red(message, args...)
}

// formatTime renders timestamps in a compact local form.
func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatTimePtr renders optional timestamps, empty when unset.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// colorStatus highlights well-known status values.
func colorStatus(status string) string {
	switch status {
	case "Active", "Approved", "paid":
		return color.GreenString(status)
	case "Pending", "pending":
		return color.YellowString(status)
	case "Suspended", "Rejected", "failed", "cancelled":
		return color.RedString(status)
	default:
		return status
	}
}
