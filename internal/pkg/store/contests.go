package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

type SearchContestsOpts struct {
	Title        *string
	ResultsGroup *string
	Scope        *string
	Limit        uint64
}

var contestsColumns = []string{
	"contest_id", "office_id", "results_group", "office_name", "district_code",
	"state", "county_id", "precinct_id", "precincts_reporting",
	"total_effected_precincts", "total_votes_for_office", "seats",
	"ranked_choice", `"primary"`, "scope", "title", "boundary", "partisan",
	"question_body", "sub_title", "incumbent_party", "called", "updated",
}

func (s *store) UpsertContests(ctx context.Context, contests []*domain.Contest) error {
	if len(contests) == 0 {
		return nil
	}

	query := builder().Insert(tableContests).Columns(contestsColumns...)

	now := time.Now().UTC()
	for _, contest := range contests {
		contest.Updated = now
		query = query.Values(
			contest.ContestID, contest.OfficeID, contest.ResultsGroup,
			contest.OfficeName, contest.DistrictCode, contest.State,
			contest.CountyID, contest.PrecinctID, contest.PrecinctsReporting,
			contest.TotalEffectedPrecincts, contest.TotalVotesForOffice,
			contest.Seats, contest.RankedChoice, contest.Primary, contest.Scope,
			contest.Title, contest.Boundary, contest.Partisan,
			contest.QuestionBody, contest.SubTitle, contest.IncumbentParty,
			contest.Called, contest.Updated,
		)
	}

	query = query.Suffix(`
on conflict (contest_id)
do update
set
	office_id = excluded.office_id,
	results_group = excluded.results_group,
	office_name = excluded.office_name,
	district_code = excluded.district_code,
	state = excluded.state,
	county_id = excluded.county_id,
	precinct_id = excluded.precinct_id,
	precincts_reporting = excluded.precincts_reporting,
	total_effected_precincts = excluded.total_effected_precincts,
	total_votes_for_office = excluded.total_votes_for_office,
	seats = excluded.seats,
	ranked_choice = excluded.ranked_choice,
	"primary" = excluded."primary",
	scope = excluded.scope,
	title = excluded.title,
	boundary = excluded.boundary,
	partisan = excluded.partisan,
	question_body = excluded.question_body,
	sub_title = excluded.sub_title,
	incumbent_party = excluded.incumbent_party,
	called = excluded.called,
	updated = excluded.updated`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("upsert contests: %w", err)
	}

	return nil
}

func (s *store) GetContest(ctx context.Context, contestID string) (*domain.Contest, error) {
	query := builder().Select(contestsColumns...).
		From(tableContests).
		Where(sq.Eq{"contest_id": contestID})

	var selected domain.Contest
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) ContestsByID(ctx context.Context, contestID string) ([]*domain.Contest, error) {
	query := builder().Select(contestsColumns...).
		From(tableContests).
		Where(sq.Eq{"contest_id": contestID})

	var selected []*domain.Contest
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListContests(ctx context.Context) ([]*domain.Contest, error) {
	query := builder().Select(contestsColumns...).
		From(tableContests).
		OrderBy("contest_id")

	var selected []*domain.Contest
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) SearchContests(ctx context.Context, opts SearchContestsOpts) ([]*domain.Contest, error) {
	query := builder().Select(contestsColumns...).
		From(tableContests).
		OrderBy("title, contest_id")

	if opts.Title != nil {
		query = query.Where(sq.ILike{"title": "%" + *opts.Title + "%"})
	}
	if opts.ResultsGroup != nil {
		query = query.Where(sq.Eq{"results_group": *opts.ResultsGroup})
	}
	if opts.Scope != nil {
		query = query.Where(sq.Eq{"scope": *opts.Scope})
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var selected []*domain.Contest
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}

// PartiesForContest returns the distinct party codes attached to a contest's
// results, re-read after every scrape so late write-in rows flip partisan off.
func (s *store) PartiesForContest(ctx context.Context, contestID string) ([]string, error) {
	query := builder().Select("distinct party_id").
		From(tableResults).
		Where(sq.Eq{"contest_id": contestID}).
		OrderBy("party_id")

	var selected []string
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
