package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finbook-dev/finbook/internal/accounts"
	"github.com/finbook-dev/finbook/internal/config"
	"github.com/finbook-dev/finbook/internal/model"
)

func newInitCommand() *cobra.Command {
	var companyName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create finbook.yaml, the ledger database and the seed chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			cfg := config.Default(uuid.NewString(), companyName)
			if err := config.Save(path, cfg); err != nil {
				return err
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			chart := accounts.DefaultChart(cfg.Company.ID)
			registry := accounts.NewRegistry(s)
			for _, a := range chart {
				if err := registry.Create(cmd.Context(), a); err != nil {
					return err
				}
				if a.Code == "3900" && a.Type == model.AccountTypeEquity {
					cfg.Fiscal.RetainedEarningsAccount = a.Code
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s with %d accounts (database: %s)\n",
				companyName, len(chart), cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyName, "company-name", "My Company", "company name")
	return cmd
}
