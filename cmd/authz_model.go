/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/spf13/cobra"
)

// authzModelCmd represents the authz-model command
var authzModelCmd = &cobra.Command{
	Use:   "authz-model",
	Short: "Print the OpenFGA authorization model",
	Long: `Print the OpenFGA authorization model in DSL form.
Write it to the store before enabling OpenFGA, for example:

  request-gin authz-model > model.fga
  fga model write --store-id=$STORE_ID --file model.fga`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.PermissionModel)
		return err
	},
}

func init() {
	rootCmd.AddCommand(authzModelCmd)
}
