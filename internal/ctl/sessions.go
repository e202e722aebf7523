package ctl

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// sessionsCmd lists the caller's login history
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show login history",
	Long:  "List the caller's sessions across all devices, newest first",
	RunE:  runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	client := newClient()

	sessions, err := client.Sessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		active := "closed"
		if s.IsActive {
			active = "active"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.IPAddress,
			s.UserAgent,
			formatTime(s.LoginTime),
			formatTimePtr(s.LogoutTime),
			active,
		})
	}

	renderTable([]string{"ID", "IP Address", "User Agent", "Login", "Logout", "State"}, rows)
	return nil
}
