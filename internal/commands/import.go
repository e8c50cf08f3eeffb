package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finbook-dev/finbook/internal/importer"
)

func newImportCommand() *cobra.Command {
	var format, bankAccountID string

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Import a bank statement CSV into the reconciliation queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			im := importer.NewImporter(s, importer.DefaultRegistry())
			n, err := im.Import(cmd.Context(), format, cfg.Company.ID, bankAccountID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "statement format")
	cmd.Flags().StringVar(&bankAccountID, "bank-account", "", "bank account ID the statement belongs to")
	cmd.MarkFlagRequired("bank-account")
	return cmd
}
