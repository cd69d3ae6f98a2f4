package scraper

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/catalogue"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

// Phase names the stage a run is in; failures are scoped by phase.
type Phase string

const (
	PhaseFetching    Phase = "fetching"
	PhaseParsing     Phase = "parsing"
	PhaseWriting     Phase = "writing"
	PhaseMatching    Phase = "matching"
	PhaseReconciling Phase = "reconciling"
	PhaseDone        Phase = "done"
)

// DefaultChunkSize is how many derived records are flushed per write. Purely
// a throughput knob; derived values never depend on it.
const DefaultChunkSize = 1000

// Store is the persistence collaborator the coordinator writes through.
type Store interface {
	AreaFinder
	ResultLookup
	ContestLookup

	UpsertAreas(ctx context.Context, areas []*domain.Area) error
	UpsertContests(ctx context.Context, contests []*domain.Contest) error
	UpsertQuestions(ctx context.Context, questions []*domain.Question) error
	UpsertResults(ctx context.Context, results []*domain.Result) error
	UpsertMeta(ctx context.Context, meta []*domain.Meta) error
	DeleteResult(ctx context.Context, result *domain.Result) error

	ListContests(ctx context.Context) ([]*domain.Contest, error)
	ListQuestions(ctx context.Context) ([]*domain.Question, error)
	PartiesForContest(ctx context.Context, contestID string) ([]string, error)
}

// RowSource fetches one source's rows: finite, single pass, in source order.
type RowSource interface {
	Fetch(ctx context.Context, src catalogue.Source) ([][]string, error)
}

// OverlaySource fetches the curated spreadsheet rows for reconciliation.
type OverlaySource interface {
	Rows(ctx context.Context, src catalogue.Source) ([]OverlayRow, error)
}

// Counters are the per-run diagnostics a scrape emits.
type Counters struct {
	RunID              uuid.UUID  `json:"run_id"`
	Entity             EntityType `json:"entity,omitempty"`
	Phase              Phase      `json:"phase"`
	Parsed             int        `json:"parsed"`
	Skipped            int        `json:"skipped"`
	Written            int        `json:"written"`
	ContestsWritten    int        `json:"contests_written"`
	Inserted           int        `json:"inserted"`
	Updated            int        `json:"updated"`
	Deleted            int        `json:"deleted"`
	QuestionsUnmatched int        `json:"questions_unmatched"`
	BoundaryTypes      []string   `json:"boundary_types,omitempty"`
}

// RunState is the mutable state of exactly one run: which contests were
// already written this run, and which boundary types have been seen. Owned by
// a single coordinator invocation, never shared.
type RunState struct {
	seenContests  map[string]struct{}
	boundaryTypes map[string]struct{}
}

func newRunState() *RunState {
	return &RunState{
		seenContests:  make(map[string]struct{}),
		boundaryTypes: make(map[string]struct{}),
	}
}

// SeenContest marks a contest id and reports whether it had been seen before
// in this run. First writer wins.
func (s *RunState) SeenContest(contestID string) bool {
	if _, ok := s.seenContests[contestID]; ok {
		return true
	}
	s.seenContests[contestID] = struct{}{}
	return false
}

func (s *RunState) AddBoundaryType(boundaryType string) {
	if boundaryType != "" {
		s.boundaryTypes[boundaryType] = struct{}{}
	}
}

func (s *RunState) BoundaryTypes() []string {
	types := make([]string, 0, len(s.boundaryTypes))
	for t := range s.boundaryTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Coordinator drives one full run per entity type: fetch, parse, write in
// chunks, then the optional matching and reconciling passes. Strictly
// sequential; row order matters for contest dedup and ranked-choice rounds.
type Coordinator struct {
	store    Store
	rows     RowSource
	overlays OverlaySource
	matcher  *Matcher
	parsers  map[EntityType]RowParser

	ChunkSize int
}

func NewCoordinator(store Store, rows RowSource, overlays OverlaySource, matcher *Matcher) *Coordinator {
	return &Coordinator{
		store:     store,
		rows:      rows,
		overlays:  overlays,
		matcher:   matcher,
		parsers:   Parsers(),
		ChunkSize: DefaultChunkSize,
	}
}

func (c *Coordinator) chunkSize() int {
	if c.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

// Scrape runs one election's source groups for one entity type. A fetch
// failure aborts the group with nothing written for it; a write failure
// aborts the batch with prior chunks standing.
func (c *Coordinator) Scrape(ctx context.Context, el catalogue.Election, entity EntityType) (*Counters, error) {
	counters := &Counters{RunID: uuid.New(), Entity: entity, Phase: PhaseFetching}
	run := newRunState()

	parser, ok := c.parsers[entity]
	if !ok {
		return counters, &ParseError{Entity: entity, Err: errUnknownEntity}
	}

	for _, group := range el.GroupNames() {
		src := el.Groups[group]
		if src.Type != entity.SourceType() {
			continue
		}

		resolved := src
		resolved.URL = el.Meta.BaseURL() + src.URL

		counters.Phase = PhaseFetching
		rows, err := c.rows.Fetch(ctx, resolved)
		if err != nil {
			return counters, &FetchError{Group: group, URL: resolved.URL, Err: err}
		}

		rctx := RowContext{Group: group, Scope: src.ContestScope, Primary: el.Meta.Primary()}
		if err := c.ingestGroup(ctx, counters, run, parser, rctx, rows); err != nil {
			return counters, err
		}

		logger.Infof(ctx, "[%s] group %s done; totals: %d parsed, %d skipped",
			entity, group, counters.Parsed, counters.Skipped)
	}

	if err := c.reconcile(ctx, counters, el, entity); err != nil {
		return counters, err
	}

	counters.Phase = PhaseDone
	return counters, nil
}

var errUnknownEntity = errors.New("no parser registered for entity type")

func (c *Coordinator) ingestGroup(ctx context.Context, counters *Counters, run *RunState,
	parser RowParser, rctx RowContext, rows [][]string) error {

	var (
		areas     []*domain.Area
		contests  []*domain.Contest
		questions []*domain.Question
		results   []*domain.Result
	)

	flush := func() error {
		counters.Phase = PhaseWriting
		if len(areas) > 0 {
			if err := c.store.UpsertAreas(ctx, areas); err != nil {
				return &WriteError{Entity: EntityAreas, Group: rctx.Group, Err: err}
			}
			counters.Written += len(areas)
			areas = areas[:0]
		}
		if len(contests) > 0 {
			if err := c.store.UpsertContests(ctx, contests); err != nil {
				return &WriteError{Entity: EntityContests, Group: rctx.Group, Err: err}
			}
			counters.Written += len(contests)
			contests = contests[:0]
		}
		if len(questions) > 0 {
			if err := c.store.UpsertQuestions(ctx, questions); err != nil {
				return &WriteError{Entity: EntityQuestions, Group: rctx.Group, Err: err}
			}
			counters.Written += len(questions)
			questions = questions[:0]
		}
		if len(results) > 0 {
			if err := c.store.UpsertResults(ctx, results); err != nil {
				return &WriteError{Entity: EntityResults, Group: rctx.Group, Err: err}
			}
			counters.Written += len(results)
			results = results[:0]
		}
		return nil
	}

	pending := func() int {
		return len(areas) + len(contests) + len(questions) + len(results)
	}

	counters.Phase = PhaseParsing
	for _, row := range rows {
		parsed, err := parser.Parse(row, rctx)
		if err != nil {
			counters.Skipped++
			logger.Warnf(ctx, "%v", err)
			continue
		}
		counters.Parsed++

		switch {
		case parsed.Area != nil:
			areas = append(areas, parsed.Area)
		case parsed.Question != nil:
			questions = append(questions, parsed.Question)
		case parsed.Result != nil:
			results = append(results, parsed.Result)
			// Companion contest: first result row for a contest wins.
			if parsed.Contest != nil && !run.SeenContest(parsed.Contest.ContestID) {
				contests = append(contests, parsed.Contest)
				counters.ContestsWritten++
			}
		case parsed.Contest != nil:
			if !run.SeenContest(parsed.Contest.ContestID) {
				contests = append(contests, parsed.Contest)
				counters.ContestsWritten++
			}
		}

		if pending() >= c.chunkSize() {
			if err := flush(); err != nil {
				return err
			}
			counters.Phase = PhaseParsing
		}
	}

	return flush()
}

// reconcile merges the curated overlay worksheet for results and contests.
func (c *Coordinator) reconcile(ctx context.Context, counters *Counters, el catalogue.Election, entity EntityType) error {
	if entity != EntityResults && entity != EntityContests {
		return nil
	}

	src, ok := el.Groups["supplemental_"+string(entity)]
	if !ok || c.overlays == nil {
		return nil
	}

	counters.Phase = PhaseReconciling
	rows, err := c.overlays.Rows(ctx, src)
	if err != nil {
		return &FetchError{Group: "supplemental_" + string(entity), URL: src.SpreadsheetID, Err: err}
	}

	if entity == EntityResults {
		actions, err := ReconcileResults(ctx, c.store, rows)
		if err != nil {
			return err
		}
		if len(actions.Insert) > 0 {
			if err := c.store.UpsertResults(ctx, actions.Insert); err != nil {
				return &WriteError{Entity: entity, Group: "supplemental_results", Err: err}
			}
		}
		if len(actions.Update) > 0 {
			if err := c.store.UpsertResults(ctx, actions.Update); err != nil {
				return &WriteError{Entity: entity, Group: "supplemental_results", Err: err}
			}
		}
		for _, result := range actions.Delete {
			if err := c.store.DeleteResult(ctx, result); err != nil {
				return &WriteError{Entity: entity, Group: "supplemental_results", Err: err}
			}
		}
		counters.Inserted += len(actions.Insert)
		counters.Updated += len(actions.Update)
		counters.Deleted += len(actions.Delete)
		counters.Skipped += len(actions.Skip)
		return nil
	}

	actions, err := ReconcileContests(ctx, c.store, rows)
	if err != nil {
		return err
	}
	if len(actions.Insert) > 0 {
		if err := c.store.UpsertContests(ctx, actions.Insert); err != nil {
			return &WriteError{Entity: entity, Group: "supplemental_contests", Err: err}
		}
	}
	if len(actions.Update) > 0 {
		if err := c.store.UpsertContests(ctx, actions.Update); err != nil {
			return &WriteError{Entity: entity, Group: "supplemental_contests", Err: err}
		}
	}
	counters.Inserted += len(actions.Insert)
	counters.Updated += len(actions.Update)
	counters.Skipped += len(actions.Skip)
	return nil
}

// SaveMeta writes the election-level metadata block as key/value rows.
func (c *Coordinator) SaveMeta(ctx context.Context, el catalogue.Election) (*Counters, error) {
	counters := &Counters{RunID: uuid.New(), Phase: PhaseWriting}

	records := MetaRecords(el.Meta)
	if len(records) > 0 {
		if err := c.store.UpsertMeta(ctx, records); err != nil {
			return counters, &WriteError{Entity: "meta", Group: "meta", Err: err}
		}
	}

	counters.Written = len(records)
	counters.Phase = PhaseDone
	return counters, nil
}

// MatchContests is the second pass over ingested contests: boundary keys,
// the partisan flag, and best-effort question attachment. Pattern misses are
// logged and leave the boundary empty; collaborator failures are terminal.
func (c *Coordinator) MatchContests(ctx context.Context) (*Counters, error) {
	counters := &Counters{RunID: uuid.New(), Entity: EntityContests, Phase: PhaseMatching}
	run := newRunState()

	contests, err := c.store.ListContests(ctx)
	if err != nil {
		return counters, &FetchError{Group: "contests", Err: err}
	}

	byID := make(map[string]*domain.Contest, len(contests))

	for _, contest := range contests {
		boundary, boundaryType, err := c.matcher.Match(ctx, contest)
		if err != nil {
			if _, advisory := err.(*PatternMismatch); advisory {
				logger.Warnf(ctx, "%v", err)
			} else {
				return counters, err
			}
		}
		contest.Boundary = boundary
		run.AddBoundaryType(boundaryType)

		parties, err := c.store.PartiesForContest(ctx, contest.ContestID)
		if err != nil {
			return counters, &FetchError{Group: "contests", Err: err}
		}
		contest.Partisan = Partisan(parties)

		byID[contest.ContestID] = contest
	}

	questions, err := c.store.ListQuestions(ctx)
	if err != nil {
		return counters, &FetchError{Group: "questions", Err: err}
	}

	for _, question := range questions {
		contest, ok := byID[question.ContestID]
		if !ok {
			counters.QuestionsUnmatched++
			logger.Warnf(ctx, "question %s has no contest %s", question.QuestionID, question.ContestID)
			continue
		}
		contest.QuestionBody = question.QuestionBody
		if contest.SubTitle == "" {
			contest.SubTitle = question.SubTitle
		}
		if contest.Title == "" {
			contest.Title = question.Title
		}
	}

	counters.Phase = PhaseWriting
	batch := make([]*domain.Contest, 0, c.chunkSize())
	for _, contest := range contests {
		batch = append(batch, contest)
		if len(batch) >= c.chunkSize() {
			if err := c.store.UpsertContests(ctx, batch); err != nil {
				return counters, &WriteError{Entity: EntityContests, Group: "match", Err: err}
			}
			counters.Written += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := c.store.UpsertContests(ctx, batch); err != nil {
			return counters, &WriteError{Entity: EntityContests, Group: "match", Err: err}
		}
		counters.Written += len(batch)
	}

	counters.BoundaryTypes = run.BoundaryTypes()
	counters.Phase = PhaseDone
	return counters, nil
}
