package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roomstager",
		Short: "Virtual furniture staging service",
		Long: `Roomstager places furniture photos into room photos using AI vision
analysis and generative image composition.

Upload a room photo and up to five furniture photos, and the service
analyzes where each piece belongs, builds placement instructions, and
produces a composite image - falling back to a deterministic layout
when the vision model is unavailable.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}
