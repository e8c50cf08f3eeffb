package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finbook-dev/finbook/internal/accounts"
	"github.com/finbook-dev/finbook/internal/events"
	"github.com/finbook-dev/finbook/internal/ledger"
)

func newCloseYearCommand() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "close-year",
		Short: "Book the closing entry that folds income and expenses into retained earnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Fiscal.RetainedEarningsAccount == "" {
				return fmt.Errorf("fiscal.retained_earnings_account is not configured")
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			fiscal, err := ledger.NewFiscalCalendar(cfg.Fiscal.YearStart)
			if err != nil {
				return err
			}
			registry := accounts.NewRegistry(s)

			// The config names the account by code; resolve it.
			var retainedEarningsID string
			chart, err := registry.All(cmd.Context(), cfg.Company.ID)
			if err != nil {
				return err
			}
			for _, a := range chart {
				if a.Code == cfg.Fiscal.RetainedEarningsAccount {
					retainedEarningsID = a.ID
					break
				}
			}
			if retainedEarningsID == "" {
				return fmt.Errorf("retained earnings account %q not found in chart", cfg.Fiscal.RetainedEarningsAccount)
			}

			posting := ledger.NewService(s, registry, events.NewBus(), fiscal)
			entry, err := posting.CloseFiscalYear(cmd.Context(), cfg.Company.ID, year, retainedEarningsID, "close-year")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked closing entry %s dated %s\n",
				entry.JournalNumber, entry.JournalDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "financial year to close")
	cmd.MarkFlagRequired("year")
	return cmd
}
