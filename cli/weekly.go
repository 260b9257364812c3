package cli

import (
	"fmt"

	"community-bot/incentive"

	"github.com/spf13/cobra"
)

var payoutReset bool

func init() {
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Weekly staff payout jobs for an external scheduler",
		Long: "Weekly staff payout jobs for an external scheduler.\n\n" +
			"The bot must be stopped: these commands refuse to run while a live bot holds " +
			"the lock in the data directory. Use WEEKLY_SCHEDULE_ENABLED for a running bot.",
	}

	payout := &cobra.Command{
		Use:   "payout",
		Short: "Compute weekly payments and post the ranking and payout commands",
		RunE:  runWeeklyPayout,
	}
	payout.Flags().BoolVar(&payoutReset, "reset", false, "Reset the weekly counters after posting")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the weekly ticket and message counters",
		RunE:  runWeeklyReset,
	}

	weekly.AddCommand(payout, reset)
	RootCmd.AddCommand(weekly)
}

func runWeeklyPayout(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	b, err := a.connect()
	if err != nil {
		return err
	}
	defer b.Close()

	return b.RunWeeklyPayout(cmd.Context(), payoutReset)
}

func runWeeklyReset(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireStopped(); err != nil {
		return err
	}
	if err := incentive.NewEngine(a.store, a.logger).ResetWeekly(); err != nil {
		return err
	}
	a.logger.Info("Weekly counters reset")
	fmt.Fprintln(cmd.OutOrStdout(), "weekly counters reset")
	return nil
}
