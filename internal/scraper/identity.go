package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// SSD #1 is Minneapolis and ISD #1 is Aitkin; the source numbers them the
	// same, so Minneapolis is forced onto its own district code.
	reMplsSSD = regexp.MustCompile(`(?i)\(SSD #1\)`)

	reRankedChoice = regexp.MustCompile(`(?i)(first|second|third|\w*th) choice`)
	reSeats        = regexp.MustCompile(`(?i)\(elect ([0-9]+)\)`)
	reQuestion     = regexp.MustCompile(`(?i)question`)
)

// Ordered vocabulary for classifying which tabulation round a ranked-choice
// row represents; first match wins. "nineth" is how the source spells it.
var rankedChoiceRounds = []struct {
	word  string
	place int64
}{
	{"first", 1},
	{"second", 2},
	{"third", 3},
	{"fourth", 4},
	{"fifth", 5},
	{"sixth", 6},
	{"seventh", 7},
	{"eighth", 8},
	{"nineth", 9},
	{"tenth", 10},
	{"final", 100},
}

const mplsDistrictCode = "1-1"

func isMplsSSD(officeName string) bool {
	return reMplsSSD.MatchString(officeName)
}

// baseID builds the composite contest key:
// id-State-County-Precinct-District-Office.
func baseID(state, county, precinct, district, office string) string {
	return "id-" + state + "-" + county + "-" + precinct + "-" + district + "-" + office
}

// firstChoiceOfficeID rewrites a ranked-choice office id to its first-choice
// form. The source increments the office id by one per choice, so dropping the
// last character and appending "1" makes every round share one id.
func firstChoiceOfficeID(officeID string) string {
	id := strings.Join(strings.Fields(officeID), "")
	if id == "" {
		return id
	}
	return id[:len(id)-1] + "1"
}

// contestIdentity derives the contest id and canonical office id for one
// results row, normalizing ranked-choice rounds onto a single contest.
func contestIdentity(state, county, precinct, district, officeID, officeName string) (contestID, canonicalOfficeID string, rankedChoice bool) {
	contestID = baseID(state, county, precinct, district, officeID)
	canonicalOfficeID = officeID

	if reRankedChoice.MatchString(officeName) {
		rankedChoice = true
		canonicalOfficeID = firstChoiceOfficeID(officeID)
		contestID = baseID(state, county, precinct, district, canonicalOfficeID)
	}

	return contestID, canonicalOfficeID, rankedChoice
}

// rankedChoicePlace classifies which round a ranked-choice office name
// represents: 1..10 for numbered choices, 100 for the final tally, 0 when the
// name carries no known round word.
func rankedChoicePlace(officeName string) int64 {
	lower := strings.ToLower(officeName)
	for _, round := range rankedChoiceRounds {
		if strings.Contains(lower, round.word) {
			return round.place
		}
	}
	return 0
}

// contestSeats reads the seat count from an "(Elect N)" office-name marker.
// One seat unless the office says otherwise.
func contestSeats(officeName string) int64 {
	match := reSeats.FindStringSubmatch(officeName)
	if match == nil {
		return 1
	}

	seats, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 1
	}
	return seats
}

// contestPrimary applies the election-level primary flag, except ballot
// questions are never primaries.
func contestPrimary(officeName string, electionPrimary bool) bool {
	if reQuestion.MatchString(officeName) {
		return false
	}
	return electionPrimary
}

// questionID derives the question key from its own bucket scheme (county,
// office code, mcd, school district). Computed from the raw fields, before any
// SSD #1 aliasing.
func questionID(county, officeCode, mcd, schoolDistrict string) string {
	return "id-" + county + "-" + officeCode + "-" + mcd + "-" + schoolDistrict
}

// questionContestID guesses the contest a ballot question belongs to. The two
// id schemes only heuristically line up; callers must treat this as
// best-effort and surface misses.
func questionContestID(county, officeCode, mcd, schoolDistrict string) string {
	contestID := "id-MN-" + county + "-" + schoolDistrict + "-" + mcd + "-" + officeCode
	if mcd != "" {
		contestID = "id-MN---" + mcd + "-" + officeCode
	}
	if schoolDistrict != "" {
		contestID = "id-MN---" + schoolDistrict + "-" + officeCode
	}
	return contestID
}
