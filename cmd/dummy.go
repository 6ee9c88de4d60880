package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ratecheck/internal/config"
	"ratecheck/internal/dummy"
	"ratecheck/internal/logging"
)

// --- Dummy Subcommand ---
var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local rate-limited server to check against",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		general, _ := cmd.Flags().GetInt("general-limit")
		api, _ := cmd.Flags().GetInt("api-limit")
		secret, _ := cmd.Flags().GetString("secret")
		logger := logging.Must(v.GetBool(config.KeyDebug))
		defer logger.Sync()

		srv, err := dummy.Start(dummy.ServerConfig{
			Port:         port,
			GeneralLimit: general,
			APILimit:     api,
			Secret:       secret,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		<-cmd.Context().Done()
		fmt.Println("\n👋 Shutting down dummy server")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", dummy.DefaultPort, "Port to run dummy server on")
	dummyCmd.Flags().Int("general-limit", dummy.DefaultGeneralLimit, "Requests per minute for non-/api paths")
	dummyCmd.Flags().Int("api-limit", dummy.DefaultAPILimit, "Requests per minute for /api paths")
	dummyCmd.Flags().String("secret", "", "HS256 secret; when empty bearer tokens are read without verification")
}
