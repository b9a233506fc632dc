package cmd

import (
	"fmt"

	"bus-booking/handlers"

	"github.com/spf13/cobra"
)

var (
	setAPIURLCmd = &cobra.Command{
		Use:   "set-api-url <url>",
		Short: "Persist the booking API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			url, err := handlers.ValidateBaseURL(args[0])
			if err != nil {
				return err
			}
			if err := a.prefs.SetAPIURL(cmd.Context(), url); err != nil {
				return fmt.Errorf("save api url: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API URL set to %s\n", url)
			return nil
		}),
	}
	setTokenCmd = &cobra.Command{
		Use:   "set-token <token>",
		Short: "Store the auth token sent with API requests; empty clears it",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.prefs.SetAuthToken(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("save auth token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Auth token saved")
			return nil
		}),
	}
)

func init() {
	rootCmd.AddCommand(setAPIURLCmd, setTokenCmd)
}
