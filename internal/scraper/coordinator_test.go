package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/catalogue"
)

type fakeStore struct {
	areas      map[string]*domain.Area
	contests   map[string]*domain.Contest
	questions  map[string]*domain.Question
	results    map[string]*domain.Result
	meta       map[string]*domain.Meta
	parties    map[string][]string
	areasByMCD map[string][]*domain.Area

	writeCalls int
	failWrites bool
	deleted    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		areas:      map[string]*domain.Area{},
		contests:   map[string]*domain.Contest{},
		questions:  map[string]*domain.Question{},
		results:    map[string]*domain.Result{},
		meta:       map[string]*domain.Meta{},
		parties:    map[string][]string{},
		areasByMCD: map[string][]*domain.Area{},
	}
}

var errWriteFailed = errors.New("write failed")

func (f *fakeStore) UpsertAreas(_ context.Context, areas []*domain.Area) error {
	f.writeCalls++
	if f.failWrites {
		return errWriteFailed
	}
	for _, a := range areas {
		f.areas[a.AreaID] = a
	}
	return nil
}

func (f *fakeStore) UpsertContests(_ context.Context, contests []*domain.Contest) error {
	f.writeCalls++
	if f.failWrites {
		return errWriteFailed
	}
	for _, c := range contests {
		f.contests[c.ContestID] = c
	}
	return nil
}

func (f *fakeStore) UpsertQuestions(_ context.Context, questions []*domain.Question) error {
	f.writeCalls++
	if f.failWrites {
		return errWriteFailed
	}
	for _, q := range questions {
		f.questions[q.QuestionID] = q
	}
	return nil
}

func (f *fakeStore) UpsertResults(_ context.Context, results []*domain.Result) error {
	f.writeCalls++
	if f.failWrites {
		return errWriteFailed
	}
	for _, r := range results {
		f.results[r.ResultID] = r
	}
	return nil
}

func (f *fakeStore) UpsertMeta(_ context.Context, meta []*domain.Meta) error {
	f.writeCalls++
	if f.failWrites {
		return errWriteFailed
	}
	for _, m := range meta {
		f.meta[m.Key] = m
	}
	return nil
}

func (f *fakeStore) DeleteResult(_ context.Context, result *domain.Result) error {
	delete(f.results, result.ResultID)
	f.deleted = append(f.deleted, result.ResultID)
	return nil
}

func (f *fakeStore) AreasByMCD(_ context.Context, mcdID string) ([]*domain.Area, error) {
	return f.areasByMCD[mcdID], nil
}

func (f *fakeStore) ResultsByID(_ context.Context, resultID string) ([]*domain.Result, error) {
	if r, ok := f.results[resultID]; ok {
		return []*domain.Result{r}, nil
	}
	return nil, nil
}

func (f *fakeStore) ContestsByID(_ context.Context, contestID string) ([]*domain.Contest, error) {
	if c, ok := f.contests[contestID]; ok {
		return []*domain.Contest{c}, nil
	}
	return nil, nil
}

func (f *fakeStore) ListContests(_ context.Context) ([]*domain.Contest, error) {
	var out []*domain.Contest
	for _, c := range f.contests {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) ListQuestions(_ context.Context) ([]*domain.Question, error) {
	var out []*domain.Question
	for _, q := range f.questions {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeStore) PartiesForContest(_ context.Context, contestID string) ([]string, error) {
	return f.parties[contestID], nil
}

type fakeRows struct {
	byURL map[string][][]string
	err   error
}

func (f *fakeRows) Fetch(_ context.Context, src catalogue.Source) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byURL[src.URL], nil
}

type fakeOverlays struct {
	rows []OverlayRow
}

func (f *fakeOverlays) Rows(_ context.Context, _ catalogue.Source) ([]OverlayRow, error) {
	return f.rows, nil
}

func senateRow(candidateID, candidate, party string) []string {
	return []string{
		"MN", "", "", "0102", "U.S. Senator", "",
		candidateID, candidate, "", "", party,
		"4100", "4120", "100", "50.0", "200",
	}
}

func testElection(rows *fakeRows, withSupplemental bool) catalogue.Election {
	groups := map[string]catalogue.Source{
		"us_senate": {Type: "results", URL: "/us_senate.txt", ContestScope: "state"},
	}
	if withSupplemental {
		groups["supplemental_results"] = catalogue.Source{Type: "supplemental_results", SpreadsheetID: "sheet-1"}
	}
	return catalogue.Election{
		Groups: groups,
		Meta:   catalogue.Meta{"base_url": "http://example.com", "primary": false},
	}
}

func newTestCoordinator(st Store, rows RowSource, overlays OverlaySource) *Coordinator {
	return NewCoordinator(st, rows, overlays, NewMatcher(st, &fakeIntersecter{}))
}

func TestScrapeResultsWritesCompanionContestOnce(t *testing.T) {
	st := newFakeStore()
	rows := &fakeRows{byURL: map[string][][]string{
		"http://example.com/us_senate.txt": {
			senateRow("9001", "SMITH", "DFL"),
			senateRow("9002", "JONES", "R"),
			senateRow("9003", "WRITE-IN**", "WI"),
		},
	}}

	coord := newTestCoordinator(st, rows, nil)
	counters, err := coord.Scrape(context.Background(), testElection(rows, false), EntityResults)
	require.NoError(t, err)

	require.Equal(t, PhaseDone, counters.Phase)
	require.Equal(t, 3, counters.Parsed)
	require.Equal(t, 0, counters.Skipped)
	require.Equal(t, 1, counters.ContestsWritten)
	require.Len(t, st.results, 3)
	require.Len(t, st.contests, 1)
	require.Equal(t, "WRITE-IN", st.results["id-MN-88---0102-9003"].Candidate)
}

func TestScrapeChunkSizeDoesNotChangeOutcome(t *testing.T) {
	raw := [][]string{
		senateRow("9001", "SMITH", "DFL"),
		senateRow("9002", "JONES", "R"),
		senateRow("9003", "BROWN", "IP"),
	}

	run := func(chunk int) *fakeStore {
		st := newFakeStore()
		rows := &fakeRows{byURL: map[string][][]string{"http://example.com/us_senate.txt": raw}}
		coord := newTestCoordinator(st, rows, nil)
		coord.ChunkSize = chunk
		_, err := coord.Scrape(context.Background(), testElection(rows, false), EntityResults)
		require.NoError(t, err)
		return st
	}

	small := run(1)
	large := run(1000)

	require.Greater(t, small.writeCalls, large.writeCalls)
	require.Equal(t, len(large.results), len(small.results))
	require.Equal(t, len(large.contests), len(small.contests))
	for id, r := range large.results {
		require.Equal(t, r.VotesCandidate, small.results[id].VotesCandidate, id)
	}
}

func TestScrapeSkipsMalformedRows(t *testing.T) {
	bad := senateRow("9002", "JONES", "R")
	bad[13] = "not-a-number"

	st := newFakeStore()
	rows := &fakeRows{byURL: map[string][][]string{
		"http://example.com/us_senate.txt": {
			senateRow("9001", "SMITH", "DFL"),
			{"MN", "too", "short"},
			bad,
		},
	}}

	coord := newTestCoordinator(st, rows, nil)
	counters, err := coord.Scrape(context.Background(), testElection(rows, false), EntityResults)
	require.NoError(t, err)

	require.Equal(t, 1, counters.Parsed)
	require.Equal(t, 2, counters.Skipped)
	require.Len(t, st.results, 1)
}

func TestScrapeFetchFailureIsFatal(t *testing.T) {
	st := newFakeStore()
	rows := &fakeRows{err: errors.New("connection refused")}

	coord := newTestCoordinator(st, rows, nil)
	counters, err := coord.Scrape(context.Background(), testElection(rows, false), EntityResults)

	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, PhaseFetching, counters.Phase)
	require.Empty(t, st.results)
}

func TestScrapeWriteFailureIsFatal(t *testing.T) {
	st := newFakeStore()
	st.failWrites = true
	rows := &fakeRows{byURL: map[string][][]string{
		"http://example.com/us_senate.txt": {senateRow("9001", "SMITH", "DFL")},
	}}

	coord := newTestCoordinator(st, rows, nil)
	counters, err := coord.Scrape(context.Background(), testElection(rows, false), EntityResults)

	require.Error(t, err)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	require.Equal(t, PhaseWriting, counters.Phase)
}

func TestScrapeRunsSupplementalReconciliation(t *testing.T) {
	st := newFakeStore()
	// A stale supplemental record that the overlay now disables.
	st.results["id-old"] = &domain.Result{ResultID: "id-old", ResultsGroup: SupplementalGroup}

	rows := &fakeRows{byURL: map[string][][]string{
		"http://example.com/us_senate.txt": {senateRow("9001", "SMITH", "DFL")},
	}}
	overlays := &fakeOverlays{rows: []OverlayRow{
		{"id": "id-old", "contest_id": "id-c", "candidate_id": "1", "enabled": false},
		{"id": "id-new", "contest_id": "id-c", "candidate_id": "2", "enabled": true,
			"votes_candidate": int64(5), "candidate": "LATE FILER"},
	}}

	coord := newTestCoordinator(st, rows, overlays)
	counters, err := coord.Scrape(context.Background(), testElection(rows, true), EntityResults)
	require.NoError(t, err)

	require.Equal(t, 1, counters.Inserted)
	require.Equal(t, 1, counters.Deleted)
	require.Equal(t, []string{"id-old"}, st.deleted)
	require.Equal(t, SupplementalGroup, st.results["id-new"].ResultsGroup)
}

func TestScrapeIgnoresGroupsOfOtherTypes(t *testing.T) {
	st := newFakeStore()
	rows := &fakeRows{byURL: map[string][][]string{}}

	el := catalogue.Election{
		Groups: map[string]catalogue.Source{
			"municipalities": {Type: "areas", URL: "/mun.txt"},
		},
		Meta: catalogue.Meta{"base_url": "http://example.com"},
	}

	coord := newTestCoordinator(st, rows, nil)
	counters, err := coord.Scrape(context.Background(), el, EntityResults)
	require.NoError(t, err)
	require.Equal(t, 0, counters.Parsed)
}

func TestSaveMeta(t *testing.T) {
	st := newFakeStore()
	coord := newTestCoordinator(st, &fakeRows{}, nil)

	counters, err := coord.SaveMeta(context.Background(), catalogue.Election{
		Meta: catalogue.Meta{"base_url": "http://example.com", "primary": true, "date": "2014-11-04"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, counters.Written)
	require.Equal(t, "true", st.meta["primary"].Value)
}

func TestMatchContestsPass(t *testing.T) {
	st := newFakeStore()
	state := "state"
	school := "school"
	st.contests["id-gov"] = &domain.Contest{ContestID: "id-gov", OfficeName: "Governor", Scope: &state}
	st.contests["id-odd"] = &domain.Contest{ContestID: "id-odd", OfficeName: "Mystery", Scope: &school}
	st.contests["id-q"] = &domain.Contest{ContestID: "id-q", OfficeName: "School District Question 1 (ISD #196)", Scope: &school}
	st.parties["id-gov"] = []string{"DFL", "R"}
	st.parties["id-q"] = []string{"NP"}

	st.questions["q-1"] = &domain.Question{
		QuestionID: "q-1", ContestID: "id-q",
		Title: "School District Question 1", SubTitle: "Levy", QuestionBody: "Shall the district levy?",
	}
	st.questions["q-orphan"] = &domain.Question{QuestionID: "q-orphan", ContestID: "id-missing"}

	coord := newTestCoordinator(st, &fakeRows{}, nil)
	counters, err := coord.MatchContests(context.Background())
	require.NoError(t, err)

	require.Equal(t, PhaseDone, counters.Phase)
	require.Equal(t, "minnesota-state-2014/27-1", st.contests["id-gov"].Boundary)
	require.True(t, st.contests["id-gov"].Partisan)
	require.False(t, st.contests["id-q"].Partisan)

	// Pattern misses keep an empty boundary without failing the pass.
	require.Empty(t, st.contests["id-odd"].Boundary)

	require.Equal(t, "school-districts-2013/0196", st.contests["id-q"].Boundary)
	require.Equal(t, "Shall the district levy?", st.contests["id-q"].QuestionBody)
	require.Equal(t, "Levy", st.contests["id-q"].SubTitle)

	require.Equal(t, 1, counters.QuestionsUnmatched)
	require.Equal(t, []string{"minnesota-state-2014", "school-districts-2013"}, counters.BoundaryTypes)
}
