package cli

import "github.com/spf13/cobra"

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands until interrupted",
		RunE:  runBot,
	})
}
