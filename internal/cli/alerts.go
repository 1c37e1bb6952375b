package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "krx-sentinel/internal/errors"
)

// addAlertCommands registers commands for browsing the alert history.
func addAlertCommands(root *cobra.Command, app *App) {
	var limit int
	var unreadOnly bool

	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "List recent alerts from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}

			entries, err := app.Store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			unread, err := app.Store.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}

			shown := 0
			for _, e := range entries {
				if unreadOnly && e.Read {
					continue
				}
				marker := " "
				if !e.Read {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%s] %s %s\n",
					marker, e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, e.Ticker, e.Message)
				shown++
			}

			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No alerts.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d unread\n", unread)
			return nil
		},
	}

	alertsCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of alerts to show")
	alertsCmd.Flags().BoolVar(&unreadOnly, "unread", false, "show only unread alerts")

	markReadCmd := &cobra.Command{
		Use:   "mark-read",
		Short: "Mark all alerts as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrStoreClosed
			}
			if err := app.Store.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All alerts marked read.")
			return nil
		},
	}

	alertsCmd.AddCommand(markReadCmd)
	root.AddCommand(alertsCmd)
}
