package elections

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/catalogue"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/scraper"
)

// Service ties the source catalogue, the scrape coordinator and the store
// together behind the operations the API and CLI expose.
type Service struct {
	store store.Store
	coord *scraper.Coordinator
	cat   catalogue.Catalogue
}

// NewService builds the service around an explicit catalogue. Passing a nil
// catalogue falls back to the configured sources file.
func NewService(st store.Store, coord *scraper.Coordinator, cat catalogue.Catalogue) (*Service, error) {
	if cat == nil {
		path := viper.GetString(constants.ViperSourcesFile)
		loaded, err := catalogue.Load(path)
		if err != nil {
			return nil, fmt.Errorf("catalogue.Load %s: %w", path, err)
		}
		cat = loaded
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalogue.Validate: %w", err)
	}

	return &Service{store: st, coord: coord, cat: cat}, nil
}

// Elections lists the catalogue's election ids, newest last.
func (s *Service) Elections() []string {
	return s.cat.IDs()
}

// Scrape runs one entity scrape for an election. Empty electionID means the
// newest election in the catalogue.
func (s *Service) Scrape(ctx context.Context, electionID string, entity scraper.EntityType) (*scraper.Counters, error) {
	el, err := s.cat.Election(electionID)
	if err != nil {
		return nil, fmt.Errorf("catalogue.Election %q: %w", electionID, err)
	}

	counters, err := s.coord.Scrape(ctx, el, entity)
	if err != nil {
		return counters, fmt.Errorf("scrape %s: %w", entity, err)
	}

	logger.Infof(ctx, "scrape %s run %s done: %d parsed, %d written, %d skipped",
		entity, counters.RunID, counters.Parsed, counters.Written, counters.Skipped)
	return counters, nil
}

// ScrapeMeta writes the election-level metadata rows.
func (s *Service) ScrapeMeta(ctx context.Context, electionID string) (*scraper.Counters, error) {
	el, err := s.cat.Election(electionID)
	if err != nil {
		return nil, fmt.Errorf("catalogue.Election %q: %w", electionID, err)
	}

	return s.coord.SaveMeta(ctx, el)
}

// MatchContests runs the boundary and question pass over everything ingested.
func (s *Service) MatchContests(ctx context.Context) (*scraper.Counters, error) {
	return s.coord.MatchContests(ctx)
}

func (s *Service) SearchContests(ctx context.Context, opts store.SearchContestsOpts) ([]*domain.Contest, error) {
	return s.store.SearchContests(ctx, opts)
}

func (s *Service) GetContest(ctx context.Context, contestID string) (*domain.Contest, error) {
	return s.store.GetContest(ctx, contestID)
}

func (s *Service) ContestResults(ctx context.Context, contestID string) ([]*domain.Result, error) {
	return s.store.ResultsByContest(ctx, contestID)
}

func (s *Service) ListAreas(ctx context.Context, opts store.ListAreasOpts) ([]*domain.Area, error) {
	return s.store.ListAreas(ctx, opts)
}

func (s *Service) Meta(ctx context.Context) ([]*domain.Meta, error) {
	return s.store.ListMeta(ctx)
}
