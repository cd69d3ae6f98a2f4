package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
)

// Boundary sets served by the boundary API. The years are part of the slug;
// the dashboard client requests shapes from these exact sets.
const (
	setState              = "minnesota-state-2014"
	setCongressional      = "congressional-districts-2012"
	setStateSenate        = "state-senate-districts-2012"
	setStateHouse         = "state-house-districts-2012"
	setDistrictCourts     = "district-courts-2012"
	setSchool             = "school-districts-2013"
	setMplsParks          = "minneapolis-parks-and-recreation-districts-2014"
	setCounties           = "counties-2010"
	setCountyCommissioner = "county-commissioner-districts-2012"
	setWards              = "wards-2012"
	setMCD                = "minor-civil-divisions-2010"
	setHospital           = "hospital-districts-2012"
)

// Minneapolis as a minor civil division; the at-large fallback for SSD #1
// races with no sub-district.
const mplsMCDBoundary = setMCD + "/2705343000"

var (
	reDistrictNumber     = regexp.MustCompile(`(?i)district ([0-9]+)`)
	rePresident          = regexp.MustCompile(`(?i)president`)
	reHouseDistrictToken = regexp.MustCompile(`(?i)district ([0-9]+)([a-zA-Z])`)
	reCourtNumber        = regexp.MustCompile(`(?i)([0-9]+)[a-zA-Z]{2} district court`)
	reISD                = regexp.MustCompile(`(?i)\(ISD #([0-9]+)\)`)
	reCSD                = regexp.MustCompile(`(?i)\(CSD #([0-9]+)\)`)
	reSSD                = regexp.MustCompile(`(?i)\(SSD #([0-9]+)\)`)
	reCountyCommissioner = regexp.MustCompile(`(?i)county commissioner district ([0-9]+)`)
	reParkCommissioner   = regexp.MustCompile(`(?i)park commissioner`)
	reWard               = regexp.MustCompile(`(?i)(?:council member\s+)?(?:ward|district) ([0-9]+)[^(]*\((.+)\)`)
	reMplsPark           = regexp.MustCompile(`(?i)park and recreation commissioner district ([0-9]+)`)
	reNonSlug            = regexp.MustCompile(`[^a-z0-9]+`)
)

// Known bad MCD codes in the source data, mapped to their corrected ids. Data,
// not logic; keep as enumerated.
var mcdFixes = map[string]string{
	"2713702872": "2713702890",
	"2703909154": "2710909154",
	"2716156896": "2714556896",
	"2705243806": "2705343806",
	"2709163668": "2709163666",
}

// AreaFinder resolves ingested municipal areas by their 5-digit MCD code.
type AreaFinder interface {
	AreasByMCD(ctx context.Context, mcdID string) ([]*domain.Area, error)
}

// Intersecter asks the boundary service which member of a set a boundary
// falls inside. No match is ("", nil); only transport failures are errors.
type Intersecter interface {
	FirstIntersection(ctx context.Context, boundary, set string) (string, error)
}

// Matcher maps a parsed contest to the boundary key (or comma-joined keys) of
// the geography its electorate covers.
type Matcher struct {
	areas     AreaFinder
	intersect Intersecter
}

func NewMatcher(areas AreaFinder, intersect Intersecter) *Matcher {
	return &Matcher{areas: areas, intersect: intersect}
}

// Match computes (boundary, boundaryType) for a contest. A *PatternMismatch
// error is advisory: log it and keep the empty boundary. Any other error is a
// collaborator failure and terminal for the matching phase.
func (m *Matcher) Match(ctx context.Context, c *domain.Contest) (string, string, error) {
	scope := ""
	if c.Scope != nil {
		scope = *c.Scope
	}

	mismatch := func() error {
		return &PatternMismatch{ContestID: c.ContestID, Scope: scope, OfficeName: c.OfficeName}
	}

	switch scope {
	case "state":
		return setState + "/27-1", setState, nil

	case "us_house":
		if match := reDistrictNumber.FindStringSubmatch(c.OfficeName); match != nil {
			return setCongressional + "/" + match[1], setCongressional, nil
		}
		// Presidential rows carry the congressional district in the
		// district code instead of the office name.
		if rePresident.MatchString(c.OfficeName) && c.DistrictCode != "" {
			return setCongressional + "/" + c.DistrictCode, setCongressional, nil
		}
		return "", "", mismatch()

	case "state_senate":
		match := reDistrictNumber.FindStringSubmatch(c.OfficeName)
		if match == nil {
			return "", "", mismatch()
		}
		n, _ := strconv.Atoi(match[1])
		return fmt.Sprintf("%s/%02d", setStateSenate, n), setStateSenate, nil

	case "state_house":
		match := reHouseDistrictToken.FindStringSubmatch(c.OfficeName)
		if match == nil {
			return "", "", mismatch()
		}
		n, _ := strconv.Atoi(match[1])
		return fmt.Sprintf("%s/%02d%s", setStateHouse, n, strings.ToLower(match[2])), setStateHouse, nil

	case "district_court":
		match := reCourtNumber.FindStringSubmatch(c.OfficeName)
		if match == nil {
			return "", "", mismatch()
		}
		return setDistrictCourts + "/" + match[1], setDistrictCourts, nil

	case "school":
		return m.matchSchool(c, mismatch)

	case "county":
		if match := reCountyCommissioner.FindStringSubmatch(c.OfficeName); match != nil {
			return setCountyCommissioner + "/" + c.CountyID + "-" + match[1], setCountyCommissioner, nil
		}
		// Park commissioner districts have no boundary set.
		if reParkCommissioner.MatchString(c.OfficeName) {
			return "", "", nil
		}
		return setCounties + "/" + c.CountyID, setCounties, nil

	case "municipal":
		return m.matchMunicipal(ctx, c, mismatch)

	case "hospital":
		return m.matchHospital(ctx, c, mismatch)
	}

	return "", "", mismatch()
}

func (m *Matcher) matchSchool(c *domain.Contest, mismatch func() error) (string, string, error) {
	if match := reSSD.FindStringSubmatch(c.OfficeName); match != nil {
		if match[1] != "1" {
			return setSchool + "/" + zeroPad(match[1], 4), setSchool, nil
		}
		// Minneapolis: sub-districted school board seats follow the
		// park district geography; at-large seats cover the whole city.
		if sub := reDistrictNumber.FindStringSubmatch(c.OfficeName); sub != nil {
			return setMplsParks + "/" + sub[1], setMplsParks, nil
		}
		return mplsMCDBoundary, setMCD, nil
	}

	if match := reISD.FindStringSubmatch(c.OfficeName); match != nil {
		return setSchool + "/" + zeroPad(match[1], 4), setSchool, nil
	}

	if match := reCSD.FindStringSubmatch(c.OfficeName); match != nil {
		return setSchool + "/" + zeroPad(match[1], 4), setSchool, nil
	}

	return "", "", mismatch()
}

func (m *Matcher) matchMunicipal(ctx context.Context, c *domain.Contest, mismatch func() error) (string, string, error) {
	if match := reMplsPark.FindStringSubmatch(c.OfficeName); match != nil {
		return setMplsParks + "/" + match[1], setMplsParks, nil
	}

	if match := reWard.FindStringSubmatch(c.OfficeName); match != nil {
		n, _ := strconv.Atoi(match[1])
		return fmt.Sprintf("%s/%s-w-%02d", setWards, slugify(match[2]), n), setWards, nil
	}

	slugs, err := m.mcdBoundaries(ctx, c)
	if err != nil {
		return "", "", err
	}
	if len(slugs) == 0 {
		return "", "", mismatch()
	}

	return strings.Join(slugs, ","), setMCD, nil
}

func (m *Matcher) matchHospital(ctx context.Context, c *domain.Contest, mismatch func() error) (string, string, error) {
	// Short district codes are hospital district ids themselves; longer ones
	// are MCD codes that have to be located inside a hospital district.
	if len(c.DistrictCode) < 5 {
		if c.DistrictCode == "" {
			return "", "", mismatch()
		}
		return setHospital + "/" + c.DistrictCode, setHospital, nil
	}

	slugs, err := m.mcdBoundaries(ctx, c)
	if err != nil {
		return "", "", err
	}

	for _, slug := range slugs {
		found, err := m.intersect.FirstIntersection(ctx, slug, setHospital)
		if err != nil {
			return "", "", fmt.Errorf("boundary intersection for %s: %w", c.ContestID, err)
		}
		if found != "" {
			return found, setHospital, nil
		}
	}

	return "", "", mismatch()
}

// mcdBoundaries resolves the minor-civil-division boundary keys for a
// contest. With a county id this is a direct computation; without one every
// ingested municipal area sharing the district's MCD code contributes its
// county's variant.
func (m *Matcher) mcdBoundaries(ctx context.Context, c *domain.Contest) ([]string, error) {
	if c.DistrictCode == "" {
		return nil, nil
	}

	if c.CountyID != "" {
		mcd, err := makeMCD(c.CountyID, c.DistrictCode)
		if err != nil {
			return nil, nil
		}
		return []string{setMCD + "/" + mcd}, nil
	}

	areas, err := m.areas.AreasByMCD(ctx, zeroPad(c.DistrictCode, 5))
	if err != nil {
		return nil, fmt.Errorf("areas by mcd %s: %w", c.DistrictCode, err)
	}

	var slugs []string
	seen := map[string]bool{}
	for _, area := range areas {
		if area.CountyID == nil {
			continue
		}
		mcd, err := makeMCD(*area.CountyID, c.DistrictCode)
		if err != nil || seen[mcd] {
			continue
		}
		seen[mcd] = true
		slugs = append(slugs, setMCD+"/"+mcd)
	}

	return slugs, nil
}

// makeMCD builds the statewide 10-digit MCD code from a county id and a
// district (place) code: 27 + county FIPS + place.
func makeMCD(countyID, districtCode string) (string, error) {
	county, err := strconv.Atoi(strings.TrimSpace(countyID))
	if err != nil {
		return "", fmt.Errorf("county id %q is not numeric", countyID)
	}

	fips := fmt.Sprintf("%03d", county*2-1)
	mcd := "27" + fips + districtCode
	if fixed, ok := mcdFixes[mcd]; ok {
		mcd = fixed
	}

	return mcd, nil
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func slugify(name string) string {
	slug := reNonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// NonpartisanParties are the party abbreviations that do not make a contest
// partisan. "N P" shows up in some source files alongside "NP".
var NonpartisanParties = []string{"NP", "WI", "N P"}

// Partisan reports whether any of a contest's result parties is a real party.
func Partisan(parties []string) bool {
	for _, party := range parties {
		nonpartisan := false
		for _, np := range NonpartisanParties {
			if party == np {
				nonpartisan = true
				break
			}
		}
		if !nonpartisan && party != "" {
			return true
		}
	}
	return false
}
