package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Scan transcript channels once and credit staff tickets",
		Long: "Scan transcript channels once and credit staff tickets.\n\n" +
			"The bot must be stopped; the command refuses to run while a live bot holds the data directory lock.",
		RunE: runScan,
	})
}

func runScan(cmd *cobra.Command, _ []string) error {
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

	result, err := b.ScanTranscripts(cmd.Context())
	if err != nil {
		return err
	}
	a.logger.Info("Transcript scan finished",
		zap.Int("channels", result.Channels),
		zap.Int("skipped", result.Skipped),
		zap.Int("credited", result.Credited))
	fmt.Fprintf(cmd.OutOrStdout(), "scanned %d channels (%d skipped), credited %d tickets\n",
		result.Channels, result.Skipped, result.Credited)
	return nil
}
