package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

var resultsColumns = []string{
	"result_id", "contest_id", "results_group", "office_name", "candidate_id",
	"candidate", "suffix", "incumbent_code", "party_id", "votes_candidate",
	"percentage", "ranked_choice_place", "updated",
}

func (s *store) UpsertResults(ctx context.Context, results []*domain.Result) error {
	if len(results) == 0 {
		return nil
	}

	query := builder().Insert(tableResults).Columns(resultsColumns...)

	now := time.Now().UTC()
	for _, result := range results {
		result.Updated = now
		query = query.Values(
			result.ResultID, result.ContestID, result.ResultsGroup,
			result.OfficeName, result.CandidateID, result.Candidate,
			result.Suffix, result.IncumbentCode, result.PartyID,
			result.VotesCandidate, result.Percentage, result.RankedChoicePlace,
			result.Updated,
		)
	}

	query = query.Suffix(`
on conflict (result_id)
do update
set
	contest_id = excluded.contest_id,
	results_group = excluded.results_group,
	office_name = excluded.office_name,
	candidate_id = excluded.candidate_id,
	candidate = excluded.candidate,
	suffix = excluded.suffix,
	incumbent_code = excluded.incumbent_code,
	party_id = excluded.party_id,
	votes_candidate = excluded.votes_candidate,
	percentage = excluded.percentage,
	ranked_choice_place = excluded.ranked_choice_place,
	updated = excluded.updated`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("upsert results: %w", err)
	}

	return nil
}

func (s *store) DeleteResult(ctx context.Context, result *domain.Result) error {
	query := builder().Delete(tableResults).
		Where(sq.Eq{"result_id": result.ResultID})

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("delete result %s: %w", result.ResultID, err)
	}

	return nil
}

func (s *store) ResultsByID(ctx context.Context, resultID string) ([]*domain.Result, error) {
	query := builder().Select(resultsColumns...).
		From(tableResults).
		Where(sq.Eq{"result_id": resultID})

	var selected []*domain.Result
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ResultsByContest(ctx context.Context, contestID string) ([]*domain.Result, error) {
	query := builder().Select(resultsColumns...).
		From(tableResults).
		Where(sq.Eq{"contest_id": contestID}).
		OrderBy("ranked_choice_place, votes_candidate desc, candidate")

	var selected []*domain.Result
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
