package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A statewide amendment row in the 16 column results layout, county blank.
func amendmentRow() []string {
	return []string{
		"MN", "", "", "1131", "CONSTITUTIONAL AMENDMENT 1", "",
		"9001", "YES", "", "", "NP",
		"4100", "4120", "1520931", "52.31", "2907456",
	}
}

func TestResultParserStatewideCountyFallback(t *testing.T) {
	parsed, err := resultParser{}.Parse(amendmentRow(), RowContext{Group: "amendments"})
	require.NoError(t, err)
	require.NotNil(t, parsed.Result)
	require.NotNil(t, parsed.Contest)

	require.Equal(t, "id-MN-88---1131", parsed.Result.ContestID)
	require.Equal(t, "id-MN-88---1131-9001", parsed.Result.ResultID)
	require.Equal(t, "88", parsed.Contest.CountyID)
	require.Equal(t, int64(1520931), parsed.Result.VotesCandidate)
	require.InDelta(t, 52.31, parsed.Result.Percentage, 0.0001)
}

func TestResultParserShortRow(t *testing.T) {
	_, err := resultParser{}.Parse([]string{"MN", "88"}, RowContext{Group: "amendments"})
	require.Error(t, err)
	require.IsType(t, &ParseError{}, err)
}

func TestResultParserNonNumericVotes(t *testing.T) {
	row := amendmentRow()
	row[13] = "n/a"
	_, err := resultParser{}.Parse(row, RowContext{Group: "amendments"})
	require.Error(t, err)
	require.IsType(t, &ParseError{}, err)
}

func TestResultParserWriteInCleanup(t *testing.T) {
	row := amendmentRow()
	row[7] = "WRITE-IN**"
	parsed, err := resultParser{}.Parse(row, RowContext{Group: "amendments"})
	require.NoError(t, err)
	require.Equal(t, "WRITE-IN", parsed.Result.Candidate)
}

func TestResultParserDoesNotMutateInput(t *testing.T) {
	row := amendmentRow()
	row[1] = ""
	_, err := resultParser{}.Parse(row, RowContext{Group: "amendments"})
	require.NoError(t, err)
	require.Equal(t, "", row[1])
}

func TestNormalizeOfficePadding(t *testing.T) {
	cases := []struct {
		group  string
		office string
		want   string
	}{
		{"state_senate", "State Senator District 7", "State Senator District 07"},
		{"state_senate", "State Senator District 37", "State Senator District 37"},
		{"state_house", "State Representative District 7A", "State Representative District 07A"},
		{"district_courts", "Judge - 1st District Court 5", "Judge - 01st District Court 05"},
		{"district_courts", "Judge - 10th District Court 15", "Judge - 10th District Court 15"},
		// Other groups are left alone.
		{"us_house", "State Senator District 7", "State Senator District 7"},
	}

	for _, tc := range cases {
		row := amendmentRow()
		row[4] = tc.office
		fixed := normalizeResultRow(row, tc.group)
		require.Equal(t, tc.want, fixed[4], tc.group)
	}
}

func TestNormalizeMplsSSDDistrict(t *testing.T) {
	row := amendmentRow()
	row[4] = "School Board Member (SSD #1)"
	row[5] = "0001"
	fixed := normalizeResultRow(row, "school_districts")
	require.Equal(t, "1-1", fixed[5])
}

func TestContestParserSeatsAndPrimary(t *testing.T) {
	row := amendmentRow()
	row[4] = "Council Member at Large (Elect 3)"
	parsed, err := contestParser{}.Parse(row, RowContext{Group: "municipal", Primary: true})
	require.NoError(t, err)
	require.Equal(t, int64(3), parsed.Contest.Seats)
	require.True(t, parsed.Contest.Primary)

	row[4] = "City Question 1"
	parsed, err = contestParser{}.Parse(row, RowContext{Group: "municipal", Primary: true})
	require.NoError(t, err)
	require.False(t, parsed.Contest.Primary)
}

func TestContestParserScope(t *testing.T) {
	parsed, err := contestParser{}.Parse(amendmentRow(), RowContext{Group: "amendments", Scope: "state"})
	require.NoError(t, err)
	require.NotNil(t, parsed.Contest.Scope)
	require.Equal(t, "state", *parsed.Contest.Scope)

	parsed, err = contestParser{}.Parse(amendmentRow(), RowContext{Group: "amendments"})
	require.NoError(t, err)
	require.Nil(t, parsed.Contest.Scope)
}

func TestRankedChoiceRoundsShareContest(t *testing.T) {
	first := amendmentRow()
	first[3], first[4] = "0352", "Council Member First Choice"
	second := amendmentRow()
	second[3], second[4] = "0353", "Council Member Second Choice"

	p1, err := resultParser{}.Parse(first, RowContext{Group: "municipal"})
	require.NoError(t, err)
	p2, err := resultParser{}.Parse(second, RowContext{Group: "municipal"})
	require.NoError(t, err)

	require.Equal(t, p1.Result.ContestID, p2.Result.ContestID)
	require.Equal(t, int64(1), p1.Result.RankedChoicePlace)
	require.Equal(t, int64(2), p2.Result.RankedChoicePlace)
	require.True(t, p1.Contest.RankedChoice)
	require.Equal(t, "0351", p1.Contest.OfficeID)
}

func TestAreaParserGroups(t *testing.T) {
	mun, err := areaParser{}.Parse([]string{"43", "Minneapolis", "2222"}, RowContext{Group: "municipalities"})
	require.NoError(t, err)
	require.Equal(t, "municipalities-43-2222", mun.Area.AreaID)
	require.Equal(t, "02222", *mun.Area.MCDID)

	county, err := areaParser{}.Parse([]string{"01", "Aitkin", "42"}, RowContext{Group: "counties"})
	require.NoError(t, err)
	require.Equal(t, "counties-01", county.Area.AreaID)
	require.Equal(t, "42", *county.Area.Precincts)

	precinct, err := areaParser{}.Parse(
		[]string{"27", "0005", "MINNEAPOLIS W-1 P-1", "59", "59A", "2", "4", "1", "43000"},
		RowContext{Group: "precincts"})
	require.NoError(t, err)
	require.Equal(t, "precincts-27-0005", precinct.Area.AreaID)
	require.Equal(t, "43000", *precinct.Area.MCDID)

	school, err := areaParser{}.Parse([]string{"0001", "AITKIN", "01", "Aitkin"},
		RowContext{Group: "school_districts"})
	require.NoError(t, err)
	require.Equal(t, "school_districts-0001", school.Area.AreaID)
	require.Equal(t, "AITKIN", school.Area.SchoolDistrictName)

	_, err = areaParser{}.Parse([]string{"x"}, RowContext{Group: "wards"})
	require.Error(t, err)
}

func TestQuestionParser(t *testing.T) {
	row := []string{
		"82", "5031", "", "0001",
		"School District Question 1",
		"approval of levy",
		"^Shall the board be authorized &ldquoyes&ldquo to levy?  ",
	}

	parsed, err := questionParser{}.Parse(row, RowContext{Group: "questions"})
	require.NoError(t, err)

	q := parsed.Question
	require.Equal(t, "id-82-5031--0001", q.QuestionID)
	require.Equal(t, "id-MN---0001-5031", q.ContestID)
	require.Equal(t, "Approval Of Levy", q.SubTitle)
	require.Equal(t, `Shall the board be authorized "yes" to levy?`, q.QuestionBody)
}

func TestQuestionParserMplsAliasOnlyInContestGuess(t *testing.T) {
	row := []string{
		"27", "5031", "", "0001",
		"School District Question 1 (SSD #1)",
		"", "body",
	}

	parsed, err := questionParser{}.Parse(row, RowContext{Group: "questions"})
	require.NoError(t, err)

	// The question keeps its raw key; only the contest guess gets the alias.
	require.Equal(t, "id-27-5031--0001", parsed.Question.QuestionID)
	require.Equal(t, "id-MN---1-1-5031", parsed.Question.ContestID)
}

func TestMetaRecords(t *testing.T) {
	records := MetaRecords(map[string]any{
		"primary":   true,
		"date":      "2014-11-04",
		"precincts": 4120,
		"turnout":   50.5,
	})

	require.Len(t, records, 4)
	// Stable key order.
	require.Equal(t, "date", records[0].Key)
	require.Equal(t, "precincts", records[1].Key)
	require.Equal(t, "primary", records[2].Key)
	require.Equal(t, "turnout", records[3].Key)

	require.Equal(t, "string", records[0].Type)
	require.Equal(t, "int", records[1].Type)
	require.Equal(t, "bool", records[2].Type)
	require.Equal(t, "true", records[2].Value)
	require.Equal(t, "float", records[3].Type)
	require.Equal(t, "50.5", records[3].Value)
}
