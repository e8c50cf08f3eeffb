package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/finbook-dev/finbook/internal/accounts"
	"github.com/finbook-dev/finbook/internal/api"
	"github.com/finbook-dev/finbook/internal/events"
	"github.com/finbook-dev/finbook/internal/ledger"
	"github.com/finbook-dev/finbook/internal/metrics"
	"github.com/finbook-dev/finbook/internal/reconcile"
	"github.com/finbook-dev/finbook/internal/reporting"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger HTTP API",
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

			fiscal, err := ledger.NewFiscalCalendar(cfg.Fiscal.YearStart)
			if err != nil {
				return err
			}

			bus := events.NewBus()
			registry := accounts.NewRegistry(s)
			posting := ledger.NewService(s, registry, bus, fiscal)
			reports := reporting.NewService(s, registry)
			matcher := reconcile.NewService(s, bus)

			server := api.NewServer(posting, reports, matcher, cfg.Company.ID)
			if cfg.Server.Metrics {
				metrics.New(prometheus.DefaultRegisterer).Observe(bus)
				server.EnableMetrics()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "finbook listening on %s\n", cfg.Server.Listen)
			return http.ListenAndServe(cfg.Server.Listen, server.Handler())
		},
	}
}
