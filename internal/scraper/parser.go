package scraper

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
)

// EntityType names one canonical table fed by the scraper.
type EntityType string

const (
	EntityAreas     EntityType = "areas"
	EntityContests  EntityType = "contests"
	EntityQuestions EntityType = "questions"
	EntityResults   EntityType = "results"
)

// SourceType maps an entity to the catalogue source type that feeds it.
// Contests are derived from the results files; there is no separate contest
// export.
func (e EntityType) SourceType() string {
	if e == EntityContests {
		return "results"
	}
	return string(e)
}

// RowContext carries per-group and per-election facts a parser needs beyond
// the raw row itself.
type RowContext struct {
	Group   string // group label within the election catalogue
	Scope   string // contest_scope from the source descriptor, "" when absent
	Primary bool   // election-level primary flag
}

// Parsed is the tagged union a parser emits. Exactly one field is set, except
// results rows which also carry their companion contest.
type Parsed struct {
	Area     *domain.Area
	Contest  *domain.Contest
	Question *domain.Question
	Result   *domain.Result
}

// RowParser turns one raw delimited record into canonical records. Parsers are
// pure: same row and context, same output (timestamps aside).
type RowParser interface {
	Entity() EntityType
	Parse(row []string, rctx RowContext) (*Parsed, error)
}

// Parsers builds the dispatch table used by the coordinator.
func Parsers() map[EntityType]RowParser {
	return map[EntityType]RowParser{
		EntityAreas:     areaParser{},
		EntityContests:  contestParser{},
		EntityQuestions: questionParser{},
		EntityResults:   resultParser{},
	}
}

// Positional layout of the results export:
// 0 state, 1 county, 2 precinct, 3 office id, 4 office name, 5 district code,
// 6 candidate id, 7 candidate, 8 suffix, 9 incumbent code, 10 party,
// 11 precincts reporting, 12 total precincts, 13 votes, 14 percentage,
// 15 total votes for office.
const resultRowLen = 16

// Statewide result files leave the county column blank; the SoS uses 88 for
// "all counties" elsewhere, so we match that.
var statewideGroups = map[string]bool{
	"amendments":            true,
	"us_senate":             true,
	"us_house":              true,
	"supreme_appeal_courts": true,
}

var (
	reSenateOffice = regexp.MustCompile(`(?i)^State Senator District ([0-9])$`)
	reHouseOffice  = regexp.MustCompile(`(?i)^State Representative District ([0-9][a-zA-Z]+)$`)
	reJudgeOffice  = regexp.MustCompile(`(?i)^Judge - ([0-9]+[a-zA-Z]{2}) District Court ([0-9]+)$`)
)

var titleCaser = cases.Title(language.English)

// normalizeResultRow applies the source-data touch-ups shared by result and
// contest parsing: the missing-county fallback, sortable office names, and the
// Minneapolis SSD #1 district alias. Works on a copy; the input row is never
// mutated.
func normalizeResultRow(row []string, group string) []string {
	fixed := make([]string, len(row))
	copy(fixed, row)

	if fixed[1] == "" && statewideGroups[group] {
		fixed[1] = "88"
	}

	switch group {
	case "state_senate":
		if m := reSenateOffice.FindStringSubmatch(fixed[4]); m != nil {
			fixed[4] = "State Senator District 0" + m[1]
		}
	case "state_house":
		if m := reHouseOffice.FindStringSubmatch(fixed[4]); m != nil {
			fixed[4] = "State Representative District 0" + m[1]
		}
	case "district_courts":
		if m := reJudgeOffice.FindStringSubmatch(fixed[4]); m != nil {
			dist, seat := m[1], m[2]
			if len(dist) == 3 {
				dist = "0" + dist
			}
			if len(seat) == 1 {
				seat = "0" + seat
			}
			fixed[4] = fmt.Sprintf("Judge - %s District Court %s", dist, seat)
		}
	}

	if isMplsSSD(fixed[4]) {
		fixed[5] = mplsDistrictCode
	}

	return fixed
}

func parseInt64(field, val string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not numeric", field, val)
	}
	return n, nil
}

func parseFloat(field, val string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not numeric", field, val)
	}
	return d.InexactFloat64(), nil
}

func strPtr(s string) *string {
	return &s
}

type resultParser struct{}

func (resultParser) Entity() EntityType {
	return EntityResults
}

// Parse emits the result row plus its companion contest. The coordinator
// decides whether the contest still needs writing this run.
func (p resultParser) Parse(row []string, rctx RowContext) (*Parsed, error) {
	if len(row) < resultRowLen {
		return nil, &ParseError{Entity: EntityResults, Group: rctx.Group, Row: row,
			Err: fmt.Errorf("row has %d fields, want %d", len(row), resultRowLen)}
	}

	row = normalizeResultRow(row, rctx.Group)

	contestID, _, _ := contestIdentity(row[0], row[1], row[2], row[5], row[3], row[4])
	resultID := contestID + "-" + row[6]

	var place int64
	if reRankedChoice.MatchString(row[4]) {
		place = rankedChoicePlace(row[4])
	}

	votes, err := parseInt64("votes_candidate", row[13])
	if err != nil {
		return nil, &ParseError{Entity: EntityResults, Group: rctx.Group, Row: row, Err: err}
	}

	percentage, err := parseFloat("percentage", row[14])
	if err != nil {
		return nil, &ParseError{Entity: EntityResults, Group: rctx.Group, Row: row, Err: err}
	}

	result := &domain.Result{
		ResultID:          resultID,
		ContestID:         contestID,
		ResultsGroup:      rctx.Group,
		OfficeName:        row[4],
		CandidateID:       row[6],
		Candidate:         strings.ReplaceAll(row[7], "WRITE-IN**", "WRITE-IN"),
		Suffix:            row[8],
		IncumbentCode:     row[9],
		PartyID:           row[10],
		VotesCandidate:    votes,
		Percentage:        percentage,
		RankedChoicePlace: place,
		Updated:           time.Now().UTC(),
	}

	companion, err := contestParser{}.Parse(row, rctx)
	if err != nil {
		return nil, err
	}

	return &Parsed{Result: result, Contest: companion.Contest}, nil
}

type contestParser struct{}

func (contestParser) Entity() EntityType {
	return EntityContests
}

func (p contestParser) Parse(row []string, rctx RowContext) (*Parsed, error) {
	if len(row) < resultRowLen {
		return nil, &ParseError{Entity: EntityContests, Group: rctx.Group, Row: row,
			Err: fmt.Errorf("row has %d fields, want %d", len(row), resultRowLen)}
	}

	row = normalizeResultRow(row, rctx.Group)

	contestID, officeID, rankedChoice := contestIdentity(row[0], row[1], row[2], row[5], row[3], row[4])

	reporting, err := parseInt64("precincts_reporting", row[11])
	if err != nil {
		return nil, &ParseError{Entity: EntityContests, Group: rctx.Group, Row: row, Err: err}
	}

	totalPrecincts, err := parseInt64("total_effected_precincts", row[12])
	if err != nil {
		return nil, &ParseError{Entity: EntityContests, Group: rctx.Group, Row: row, Err: err}
	}

	totalVotes, err := parseInt64("total_votes_for_office", row[15])
	if err != nil {
		return nil, &ParseError{Entity: EntityContests, Group: rctx.Group, Row: row, Err: err}
	}

	var scope *string
	if rctx.Scope != "" {
		scope = strPtr(rctx.Scope)
	}

	contest := &domain.Contest{
		ContestID:              contestID,
		OfficeID:               officeID,
		ResultsGroup:           rctx.Group,
		OfficeName:             row[4],
		DistrictCode:           row[5],
		State:                  row[0],
		CountyID:               row[1],
		PrecinctID:             row[2],
		PrecinctsReporting:     reporting,
		TotalEffectedPrecincts: totalPrecincts,
		TotalVotesForOffice:    totalVotes,
		Seats:                  contestSeats(row[4]),
		RankedChoice:           rankedChoice,
		Primary:                contestPrimary(row[4], rctx.Primary),
		Scope:                  scope,
		Updated:                time.Now().UTC(),
	}

	return &Parsed{Contest: contest}, nil
}

type areaParser struct{}

func (areaParser) Entity() EntityType {
	return EntityAreas
}

func (p areaParser) Parse(row []string, rctx RowContext) (*Parsed, error) {
	area := &domain.Area{
		AreasGroup: rctx.Group,
		Updated:    time.Now().UTC(),
	}

	short := func(want int) error {
		return &ParseError{Entity: EntityAreas, Group: rctx.Group, Row: row,
			Err: fmt.Errorf("row has %d fields, want %d", len(row), want)}
	}

	switch rctx.Group {
	case "municipalities":
		if len(row) < 3 {
			return nil, short(3)
		}
		mcd, err := parseInt64("mcd_id", row[2])
		if err != nil {
			return nil, &ParseError{Entity: EntityAreas, Group: rctx.Group, Row: row, Err: err}
		}
		area.AreaID = rctx.Group + "-" + row[0] + "-" + row[2]
		area.CountyID = strPtr(row[0])
		area.CountyName = strPtr(row[1])
		area.MCDID = strPtr(fmt.Sprintf("%05d", mcd)) // enforce 5 digits
		area.Name = row[1]

	case "counties":
		if len(row) < 3 {
			return nil, short(3)
		}
		area.AreaID = rctx.Group + "-" + row[0]
		area.CountyID = strPtr(row[0])
		area.CountyName = strPtr(row[1])
		area.Precincts = strPtr(row[2])

	case "precincts":
		if len(row) < 9 {
			return nil, short(9)
		}
		area.AreaID = rctx.Group + "-" + row[0] + "-" + row[1]
		area.CountyID = strPtr(row[0])
		area.PrecinctID = strPtr(row[1])
		area.PrecinctName = row[2]
		area.StateSenateID = strPtr(row[3])
		area.StateHouseID = strPtr(row[4])
		area.CountyCommissionerID = strPtr(row[5])
		area.DistrictCourtID = strPtr(row[6])
		area.SoilWaterID = strPtr(row[7])
		area.MCDID = strPtr(row[8])

	case "school_districts":
		if len(row) < 4 {
			return nil, short(4)
		}
		area.AreaID = rctx.Group + "-" + row[0]
		area.SchoolDistrictID = strPtr(row[0])
		area.SchoolDistrictName = row[1]
		area.CountyID = strPtr(row[2])
		area.CountyName = strPtr(row[3])

	default:
		return nil, &ParseError{Entity: EntityAreas, Group: rctx.Group, Row: row,
			Err: fmt.Errorf("unknown areas group %q", rctx.Group)}
	}

	return &Parsed{Area: area}, nil
}

type questionParser struct{}

func (questionParser) Entity() EntityType {
	return EntityQuestions
}

// Ballot question layout: 0 county, 1 office code, 2 mcd (statewide FIPS
// code), 3 school district, 4 title, 5 sub title, 6 body. The source is known
// to contain duplicate rows; the derived key collapses them.
func (p questionParser) Parse(row []string, rctx RowContext) (*Parsed, error) {
	if len(row) < 7 {
		return nil, &ParseError{Entity: EntityQuestions, Group: rctx.Group, Row: row,
			Err: fmt.Errorf("row has %d fields, want 7", len(row))}
	}

	// The question id keeps the raw school district; only the contest guess
	// uses the Minneapolis alias.
	qID := questionID(row[0], row[1], row[2], row[3])

	school := row[3]
	if isMplsSSD(row[4]) {
		school = mplsDistrictCode
	}
	contestID := questionContestID(row[0], row[1], row[2], school)

	question := &domain.Question{
		QuestionID:   qID,
		ContestID:    contestID,
		Title:        row[4],
		SubTitle:     titleCaser.String(row[5]),
		QuestionBody: cleanQuestionBody(row[6]),
		Updated:      time.Now().UTC(),
	}

	return &Parsed{Question: question}, nil
}

// cleanQuestionBody strips the stray formatting the source embeds in question
// text.
func cleanQuestionBody(body string) string {
	body = strings.TrimSpace(strings.ReplaceAll(body, "^", ""))
	return strings.ReplaceAll(body, "&ldquo", `"`)
}

// MetaRecords flattens the election-level metadata block into key/value rows,
// in stable key order.
func MetaRecords(meta map[string]any) []*domain.Meta {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]*domain.Meta, 0, len(meta))
	for _, key := range keys {
		record := &domain.Meta{Key: key, Updated: time.Now().UTC()}
		switch v := meta[key].(type) {
		case bool:
			record.Value = strconv.FormatBool(v)
			record.Type = "bool"
		case string:
			record.Value = v
			record.Type = "string"
		case float64:
			record.Value = strconv.FormatFloat(v, 'f', -1, 64)
			record.Type = "float"
		case int:
			record.Value = strconv.Itoa(v)
			record.Type = "int"
		default:
			record.Value = fmt.Sprint(v)
			record.Type = "string"
		}
		records = append(records, record)
	}
	return records
}
