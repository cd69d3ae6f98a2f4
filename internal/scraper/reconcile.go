package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
)

// SupplementalGroup tags records that came from the curated overlay rather
// than the automated feed. Only records carrying this tag may be deleted by
// reconciliation.
const SupplementalGroup = "supplemental_results"

// OverlayRow is one spreadsheet row keyed by normalized column name.
type OverlayRow map[string]any

// Typed overlay columns; everything else passes through as string.
var overlayTypes = map[string]string{
	"percentage":          "float",
	"votes_candidate":     "int",
	"ranked_choice_place": "int",
	"percent_needed":      "float",
}

// NormalizeOverlay converts a raw worksheet grid (header row first) into
// column-typed rows. Dots in headers become underscores; typed columns that
// fail conversion become nil so reconciliation treats them as absent.
func NormalizeOverlay(grid [][]any) []OverlayRow {
	if len(grid) < 2 {
		return nil
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.ReplaceAll(fmt.Sprint(h), ".", "_")
	}

	rows := make([]OverlayRow, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		row := make(OverlayRow, len(headers))
		for i, header := range headers {
			if i >= len(raw) {
				break
			}
			row[header] = coerceOverlayValue(header, raw[i])
		}
		rows = append(rows, row)
	}

	return rows
}

func coerceOverlayValue(column string, val any) any {
	if val == nil {
		return nil
	}

	kind, typed := overlayTypes[column]
	if !typed {
		switch v := val.(type) {
		case string:
			return v
		case bool:
			return v
		default:
			return fmt.Sprint(v)
		}
	}

	switch kind {
	case "int":
		switch v := val.(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			if v == "" {
				return nil
			}
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil
			}
			return n
		}
	case "float":
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if v == "" {
				return nil
			}
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			if err != nil {
				return nil
			}
			return d.InexactFloat64()
		}
	}

	return nil
}

func overlayString(row OverlayRow, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

func overlayInt(row OverlayRow, column string) (int64, bool) {
	n, ok := row[column].(int64)
	return n, ok
}

func overlayFloat(row OverlayRow, column string) (float64, bool) {
	f, ok := row[column].(float64)
	return f, ok
}

func overlayEnabled(row OverlayRow) bool {
	switch v := row["enabled"].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
		return err == nil && b
	}
	return false
}

// ResultActions are the deduplicated, disjoint outcomes of reconciling result
// overlays. Apply inserts and updates before deletes.
type ResultActions struct {
	Insert []*domain.Result
	Update []*domain.Result
	Delete []*domain.Result
	Skip   []*ReconciliationSkip
}

// ContestActions are the outcomes of reconciling contest overlays. Contests
// are never deleted by reconciliation.
type ContestActions struct {
	Insert []*domain.Contest
	Update []*domain.Contest
	Skip   []*ReconciliationSkip
}

type ResultLookup interface {
	ResultsByID(ctx context.Context, resultID string) ([]*domain.Result, error)
}

type ContestLookup interface {
	ContestsByID(ctx context.Context, contestID string) ([]*domain.Contest, error)
}

// ReconcileResults resolves each overlay row against the canonical results:
// update matched rows when enabled, delete matched supplemental-origin rows
// when disabled, insert enabled unmatched rows with non-negative votes. Rows
// missing id, contest_id or candidate_id resolve to no action; partially
// filled overlay templates are expected.
func ReconcileResults(ctx context.Context, lookup ResultLookup, rows []OverlayRow) (*ResultActions, error) {
	actions := &ResultActions{}
	seen := map[string]string{}

	skip := func(row OverlayRow) {
		actions.Skip = append(actions.Skip, &ReconciliationSkip{Entity: EntityResults, Group: SupplementalGroup, Row: row})
	}

	// First action for a given record wins; the lists stay disjoint.
	mark := func(action string, r *domain.Result) {
		if _, ok := seen[r.ResultID]; ok {
			return
		}
		seen[r.ResultID] = action
		switch action {
		case "insert":
			actions.Insert = append(actions.Insert, r)
		case "update":
			actions.Update = append(actions.Update, r)
		case "delete":
			actions.Delete = append(actions.Delete, r)
		}
	}

	for _, row := range rows {
		rowID := overlayString(row, "id")
		if rowID == "" || overlayString(row, "contest_id") == "" || overlayString(row, "candidate_id") == "" {
			skip(row) // template row without linkage
			continue
		}

		enabled := overlayEnabled(row)
		votes, hasVotes := overlayInt(row, "votes_candidate")

		matched, err := lookup.ResultsByID(ctx, rowID)
		if err != nil {
			return nil, fmt.Errorf("results by id %s: %w", rowID, err)
		}

		switch {
		case len(matched) > 0 && enabled:
			for _, result := range matched {
				applyResultOverlay(result, row)
				mark("update", result)
			}

		case len(matched) > 0 && !enabled:
			if matched[0].ResultsGroup != SupplementalGroup {
				skip(row)
				continue
			}
			for _, result := range matched {
				mark("delete", result)
			}

		case enabled && hasVotes && votes >= 0:
			insert := &domain.Result{
				ResultID:     rowID,
				ResultsGroup: SupplementalGroup,
				Updated:      time.Now().UTC(),
			}
			applyResultOverlay(insert, row)
			mark("insert", insert)

		default:
			skip(row)
		}
	}

	return actions, nil
}

// ReconcileContests matches overlay contests by id: matched contests are
// always updated; unmatched ones are inserted unless explicitly disabled.
func ReconcileContests(ctx context.Context, lookup ContestLookup, rows []OverlayRow) (*ContestActions, error) {
	actions := &ContestActions{}
	seen := map[string]bool{}

	skip := func(row OverlayRow) {
		actions.Skip = append(actions.Skip, &ReconciliationSkip{Entity: EntityContests, Group: "supplemental_contests", Row: row})
	}

	for _, row := range rows {
		rowID := overlayString(row, "id")
		if rowID == "" {
			skip(row)
			continue
		}

		matched, err := lookup.ContestsByID(ctx, rowID)
		if err != nil {
			return nil, fmt.Errorf("contests by id %s: %w", rowID, err)
		}

		if len(matched) > 0 {
			for _, contest := range matched {
				applyContestOverlay(contest, row)
				if !seen[contest.ContestID] {
					seen[contest.ContestID] = true
					actions.Update = append(actions.Update, contest)
				}
			}
			continue
		}

		if v, ok := row["enabled"]; ok && v != nil && !overlayEnabled(row) {
			skip(row)
			continue
		}

		insert := &domain.Contest{
			ContestID:    rowID,
			ResultsGroup: SupplementalGroup,
			Seats:        1,
			Updated:      time.Now().UTC(),
		}
		applyContestOverlay(insert, row)
		if !seen[insert.ContestID] {
			seen[insert.ContestID] = true
			actions.Insert = append(actions.Insert, insert)
		}
	}

	return actions, nil
}

// applyResultOverlay copies every non-nil, non-empty overlay field onto the
// result.
func applyResultOverlay(r *domain.Result, row OverlayRow) {
	for column, val := range row {
		if val == nil {
			continue
		}
		if s, ok := val.(string); ok && s == "" {
			continue
		}

		switch column {
		case "contest_id":
			r.ContestID = overlayString(row, column)
		case "candidate_id":
			r.CandidateID = overlayString(row, column)
		case "candidate":
			r.Candidate = overlayString(row, column)
		case "office_name":
			r.OfficeName = overlayString(row, column)
		case "suffix":
			r.Suffix = overlayString(row, column)
		case "incumbent_code":
			r.IncumbentCode = overlayString(row, column)
		case "party_id":
			r.PartyID = overlayString(row, column)
		case "votes_candidate":
			if n, ok := overlayInt(row, column); ok {
				r.VotesCandidate = n
			}
		case "percentage":
			if f, ok := overlayFloat(row, column); ok {
				r.Percentage = f
			}
		case "ranked_choice_place":
			if n, ok := overlayInt(row, column); ok {
				r.RankedChoicePlace = n
			}
		}
	}
	r.Updated = time.Now().UTC()
}

// applyContestOverlay copies every non-nil, non-empty overlay field onto the
// contest.
func applyContestOverlay(c *domain.Contest, row OverlayRow) {
	for column, val := range row {
		if val == nil {
			continue
		}
		if s, ok := val.(string); ok && s == "" {
			continue
		}

		switch column {
		case "title":
			c.Title = overlayString(row, column)
		case "sub_title":
			c.SubTitle = overlayString(row, column)
		case "question_body":
			c.QuestionBody = overlayString(row, column)
		case "office_name":
			c.OfficeName = overlayString(row, column)
		case "boundary":
			c.Boundary = overlayString(row, column)
		case "scope":
			scope := overlayString(row, column)
			c.Scope = &scope
		case "incumbent_party":
			party := overlayString(row, column)
			c.IncumbentParty = &party
		case "seats":
			if n, err := strconv.ParseInt(overlayString(row, column), 10, 64); err == nil {
				c.Seats = n
			}
		case "precincts_reporting":
			if n, err := strconv.ParseInt(overlayString(row, column), 10, 64); err == nil {
				c.PrecinctsReporting = n
			}
		case "total_effected_precincts":
			if n, err := strconv.ParseInt(overlayString(row, column), 10, 64); err == nil {
				c.TotalEffectedPrecincts = n
			}
		case "total_votes_for_office":
			if n, err := strconv.ParseInt(overlayString(row, column), 10, 64); err == nil {
				c.TotalVotesForOffice = n
			}
		case "ranked_choice":
			if b, ok := val.(bool); ok {
				c.RankedChoice = b
			}
		case "primary":
			if b, ok := val.(bool); ok {
				c.Primary = b
			}
		case "partisan":
			if b, ok := val.(bool); ok {
				c.Partisan = b
			}
		case "called":
			if b, ok := val.(bool); ok {
				c.Called = b
			}
		}
	}
	c.Updated = time.Now().UTC()
}
