package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContestIdentityPlain(t *testing.T) {
	contestID, officeID, ranked := contestIdentity("MN", "01", "0005", "12", "0101", "County Commissioner District 3")

	require.Equal(t, "id-MN-01-0005-12-0101", contestID)
	require.Equal(t, "0101", officeID)
	require.False(t, ranked)
}

func TestContestIdentityRankedChoice(t *testing.T) {
	// Every tabulation round of one race collapses onto the first-choice id.
	rounds := []string{
		"Council Member First Choice",
		"Council Member Second Choice",
		"Council Member Third Choice",
	}
	ids := []string{"0352", "0353", "0354"}

	for i, office := range rounds {
		contestID, officeID, ranked := contestIdentity("MN", "", "", "43000", ids[i], office)
		require.True(t, ranked, office)
		require.Equal(t, "0351", officeID, office)
		require.Equal(t, "id-MN---43000-0351", contestID, office)
	}
}

func TestFirstChoiceOfficeIDStripsSpaces(t *testing.T) {
	require.Equal(t, "0351", firstChoiceOfficeID(" 03 52 "))
	require.Equal(t, "", firstChoiceOfficeID("   "))
}

func TestRankedChoicePlace(t *testing.T) {
	cases := []struct {
		office string
		place  int64
	}{
		{"Mayor First Choice", 1},
		{"Mayor Second Choice", 2},
		{"Mayor Nineth Choice", 9},
		{"Mayor Tenth Choice", 10},
		{"Mayor Final", 100},
		{"Mayor", 0},
	}

	for _, tc := range cases {
		require.Equal(t, tc.place, rankedChoicePlace(tc.office), tc.office)
	}
}

func TestRankedChoicePlaceFirstMatchWins(t *testing.T) {
	// "first" sits before "final" in the vocabulary.
	require.Equal(t, int64(1), rankedChoicePlace("First Choice Final"))
}

func TestContestSeats(t *testing.T) {
	require.Equal(t, int64(1), contestSeats("Council Member"))
	require.Equal(t, int64(3), contestSeats("Council Member at Large (Elect 3)"))
	require.Equal(t, int64(2), contestSeats("SCHOOL BOARD MEMBER (ELECT 2)"))
}

func TestContestPrimary(t *testing.T) {
	require.True(t, contestPrimary("Governor", true))
	require.False(t, contestPrimary("Governor", false))
	// Ballot questions never run as primaries.
	require.False(t, contestPrimary("School District Question 1", true))
	require.False(t, contestPrimary("CITY QUESTION", true))
}

func TestMplsSSDAlias(t *testing.T) {
	require.True(t, isMplsSSD("School Board Member (SSD #1)"))
	require.True(t, isMplsSSD("school board member (ssd #1)"))
	require.False(t, isMplsSSD("School Board Member (ISD #1)"))
}

func TestQuestionContestIDBuckets(t *testing.T) {
	// School district beats mcd, mcd beats the plain county form.
	require.Equal(t, "id-MN---0001-5031", questionContestID("27", "5031", "", "0001"))
	require.Equal(t, "id-MN---43000-5031", questionContestID("27", "5031", "43000", ""))
	require.Equal(t, "id-MN-27---5031", questionContestID("27", "5031", "", ""))
}

func TestQuestionID(t *testing.T) {
	require.Equal(t, "id-82-5031-43000-", questionID("82", "5031", "43000", ""))
}
