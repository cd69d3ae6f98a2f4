package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store/xpgx"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/scraper"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/service/elections"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/source"
)

func newScrapeCmd() *cobra.Command {
	var electionID string

	cmd := &cobra.Command{
		Use:   "scrape [areas|contests|questions|results|meta|match|all]",
		Short: "Run one scrape pass against the Secretary of State export",
		Args:  cobra.ExactArgs(1),
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

			switch args[0] {
			case "areas", "contests", "questions", "results":
				_, err = svc.Scrape(ctx, electionID, scraper.EntityType(args[0]))
			case "meta":
				_, err = svc.ScrapeMeta(ctx, electionID)
			case "match":
				_, err = svc.MatchContests(ctx)
			case "all":
				// The order matters: areas and results before the second pass.
				for _, entity := range []scraper.EntityType{
					scraper.EntityAreas, scraper.EntityQuestions, scraper.EntityResults,
				} {
					if _, err = svc.Scrape(ctx, electionID, entity); err != nil {
						return err
					}
				}
				if _, err = svc.ScrapeMeta(ctx, electionID); err != nil {
					return err
				}
				_, err = svc.MatchContests(ctx)
			default:
				return fmt.Errorf("unknown scrape type %q", args[0])
			}

			return err
		},
	}

	cmd.Flags().StringVar(&electionID, "election", "", "election id from the sources file, empty for newest")
	return cmd
}
