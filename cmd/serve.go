package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagAddr != "" {
			cfg.ListenAddr = flagAddr
		}

		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		return server.New(a).ListenAndServe(cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
