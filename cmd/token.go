package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ratecheck/internal/dummy"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token accepted by the dummy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tok, err := dummy.GenerateToken(uuid.New().String(), email, name, secret, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", "ratecheck", "HS256 secret, same value as ratecheck dummy --secret")
	tokenCmd.Flags().String("email", "admin@admin.com", "email claim")
	tokenCmd.Flags().String("name", "Admin", "name claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
