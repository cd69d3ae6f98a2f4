package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/api"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store/xpgx"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/scraper"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/service/elections"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/source"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the results API and scrape triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := xpgx.NewPool(ctx, viper.GetString(constants.ViperDatabaseURL))
			if err != nil {
				return err
			}
			defer pool.Close()

			st := store.NewStore(pool)
			matcher := scraper.NewMatcher(st, source.NewBoundaryClient(viper.GetString(constants.ViperBoundaryAPI)))
			coord := scraper.NewCoordinator(st, source.NewHTTPRows(),
				source.NewSheetOverlays(viper.GetString(constants.ViperOverlayAPI)), matcher)

			svc, err := elections.NewService(st, coord, nil)
			if err != nil {
				return err
			}

			apiService, err := api.NewAPIService(svc)
			if err != nil {
				return err
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				apiService.Serve(viper.GetString(constants.ViperListenAddr))
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return apiService.Shutdown(shutdownCtx)
			})

			logger.Infof(ctx, "listening on %s", viper.GetString(constants.ViperListenAddr))
			return eg.Wait()
		},
	}
}
