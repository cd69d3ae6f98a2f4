package domain

import "time"

// Canonical entities keyed by natural ids derived from the Secretary of State
// exports. The same raw row always derives the same id, so every write is an
// upsert on the id column.

type Area struct {
	AreaID               string    `db:"area_id" json:"area_id"`
	AreasGroup           string    `db:"areas_group" json:"areas_group"`
	CountyID             *string   `db:"county_id" json:"county_id"`
	CountyName           *string   `db:"county_name" json:"county_name"`
	WardID               *string   `db:"ward_id" json:"ward_id"`
	PrecinctID           *string   `db:"precinct_id" json:"precinct_id"`
	PrecinctName         string    `db:"precinct_name" json:"precinct_name"`
	StateSenateID        *string   `db:"state_senate_id" json:"state_senate_id"`
	StateHouseID         *string   `db:"state_house_id" json:"state_house_id"`
	CountyCommissionerID *string   `db:"county_commissioner_id" json:"county_commissioner_id"`
	DistrictCourtID      *string   `db:"district_court_id" json:"district_court_id"`
	SoilWaterID          *string   `db:"soil_water_id" json:"soil_water_id"`
	SchoolDistrictID     *string   `db:"school_district_id" json:"school_district_id"`
	SchoolDistrictName   string    `db:"school_district_name" json:"school_district_name"`
	MCDID                *string   `db:"mcd_id" json:"mcd_id"`
	Precincts            *string   `db:"precincts" json:"precincts"`
	Name                 string    `db:"name" json:"name"`
	Updated              time.Time `db:"updated" json:"updated"`
}

type Contest struct {
	ContestID              string    `db:"contest_id" json:"contest_id"`
	OfficeID               string    `db:"office_id" json:"office_id"`
	ResultsGroup           string    `db:"results_group" json:"results_group"`
	OfficeName             string    `db:"office_name" json:"office_name"`
	DistrictCode           string    `db:"district_code" json:"district_code"`
	State                  string    `db:"state" json:"state"`
	CountyID               string    `db:"county_id" json:"county_id"`
	PrecinctID             string    `db:"precinct_id" json:"precinct_id"`
	PrecinctsReporting     int64     `db:"precincts_reporting" json:"precincts_reporting"`
	TotalEffectedPrecincts int64     `db:"total_effected_precincts" json:"total_effected_precincts"`
	TotalVotesForOffice    int64     `db:"total_votes_for_office" json:"total_votes_for_office"`
	Seats                  int64     `db:"seats" json:"seats"`
	RankedChoice           bool      `db:"ranked_choice" json:"ranked_choice"`
	Primary                bool      `db:"primary" json:"primary"`
	Scope                  *string   `db:"scope" json:"scope"`
	Title                  string    `db:"title" json:"title"`
	Boundary               string    `db:"boundary" json:"boundary"`
	Partisan               bool      `db:"partisan" json:"partisan"`
	QuestionBody           string    `db:"question_body" json:"question_body"`
	SubTitle               string    `db:"sub_title" json:"sub_title"`
	IncumbentParty         *string   `db:"incumbent_party" json:"incumbent_party"`
	Called                 bool      `db:"called" json:"called"`
	Updated                time.Time `db:"updated" json:"updated"`
}

type Question struct {
	QuestionID   string    `db:"question_id" json:"question_id"`
	ContestID    string    `db:"contest_id" json:"contest_id"`
	Title        string    `db:"title" json:"title"`
	SubTitle     string    `db:"sub_title" json:"sub_title"`
	QuestionBody string    `db:"question_body" json:"question_body"`
	Updated      time.Time `db:"updated" json:"updated"`
}

type Result struct {
	ResultID          string    `db:"result_id" json:"result_id"`
	ContestID         string    `db:"contest_id" json:"contest_id"`
	ResultsGroup      string    `db:"results_group" json:"results_group"`
	OfficeName        string    `db:"office_name" json:"office_name"`
	CandidateID       string    `db:"candidate_id" json:"candidate_id"`
	Candidate         string    `db:"candidate" json:"candidate"`
	Suffix            string    `db:"suffix" json:"suffix"`
	IncumbentCode     string    `db:"incumbent_code" json:"incumbent_code"`
	PartyID           string    `db:"party_id" json:"party_id"`
	VotesCandidate    int64     `db:"votes_candidate" json:"votes_candidate"`
	Percentage        float64   `db:"percentage" json:"percentage"`
	RankedChoicePlace int64     `db:"ranked_choice_place" json:"ranked_choice_place"`
	Updated           time.Time `db:"updated" json:"updated"`
}

// Meta holds election-level key/values from the source catalogue, kept around
// so the dashboard can show things like the election date and primary flag.
type Meta struct {
	Key     string    `db:"key" json:"key"`
	Value   string    `db:"value" json:"value"`
	Type    string    `db:"type" json:"type"`
	Updated time.Time `db:"updated" json:"updated"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
