package fscourse_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/fscourse"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCourse(t *testing.T) {
	course, err := fscourse.Read("testdata/ws2024")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms WS2024", course.Name)

	require.Len(t, course.Catalog.Sheets, 3)
	sheet1 := course.Catalog.Sheets[0]
	assert.Equal(t, points.PointInfo{Must: 16, Bonus: 4}, points.PointsOfAll(sheet1))
	assert.True(t, course.Catalog.Sheets[2].Bonus)

	require.Len(t, course.Catalog.Exams, 1)
	assert.Equal(t, 0.5, course.Catalog.Exams[0].PercentageNeeded)

	require.Len(t, course.Criteria, 3)
	assert.Equal(t, criteria.KindScheinexam, course.Criteria[1].Identifier)
	assert.JSONEq(t, `{"exams":["final"]}`, string(course.Criteria[1].Payload))

	require.Len(t, course.Rosters, 1)
	roster := course.Rosters[0]
	assert.Equal(t, []time.Time{
		time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC),
	}, roster.Tutorial.Dates)
	require.Len(t, roster.Teams, 1)
	require.Len(t, roster.Students, 2)

	ada := roster.Students[0]
	assert.Equal(t, uuid.NullUUID{UUID: roster.Teams[0].ID, Valid: true}, ada.TeamID)
	assert.Equal(t, criteria.AttendanceExcused, ada.Attendances["2024-10-21"])
	entry, ok := roster.Teams[0].Points.Entry("sheet-2", "1")
	require.True(t, ok)
	assert.Equal(t, points.Entry{Comment: "missing proof", Points: points.ScalarPoints(7)}, entry)

	alan := roster.Students[1]
	assert.Equal(t, "5b4d3c1e-8f0a-4c2b-9d6e-7a1f2b3c4d5e", alan.ID.String())
	assert.False(t, alan.TeamID.Valid)
}

func TestReadCourseIDsAreStable(t *testing.T) {
	a, err := fscourse.Read("testdata/ws2024")
	require.NoError(t, err)
	b, err := fscourse.Read("testdata/ws2024")
	require.NoError(t, err)

	assert.Equal(t, a.Rosters[0].Tutorial.ID, b.Rosters[0].Tutorial.ID)
	assert.Equal(t, a.Rosters[0].Students[0].ID, b.Rosters[0].Students[0].ID)
	assert.Equal(t, a.Criteria[0].ID, b.Criteria[0].ID)
}

func TestCourseEvaluates(t *testing.T) {
	course, err := fscourse.Read("testdata/ws2024")
	require.NoError(t, err)

	b := summary.NewBuilder(criteria.DefaultRegistry())
	roster := course.Rosters[0]
	team := &roster.Teams[0]

	// ada: team 9 + 7, own 5 + 4 bonus on sheet 1 => 25/30, exam 23/40, attended both dates
	ada, err := b.BuildSummary(roster.Students[0], team, course.Criteria, course.Catalog, roster.Tutorial)
	require.NoError(t, err)
	assert.True(t, ada.Passed)
	assert.Equal(t, 25.0, ada.Criteria[course.Criteria[0].ID.String()].Achieved)

	alan, err := b.BuildSummary(roster.Students[1], nil, course.Criteria, course.Catalog, roster.Tutorial)
	require.NoError(t, err)
	assert.False(t, alan.Passed)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong specification", `specification = "v9"`},
		{"duplicate sheet", "specification = \"v1\"\n[[sheets]]\nid = \"s\"\n[[sheets]]\nid = \"s\"\n"},
		{"unknown team", "specification = \"v1\"\n[[tutorials]]\nslot = \"x\"\n[[tutorials.students]]\nfirst_name = \"a\"\nteam_no = 3\n"},
		{"bad attendance", "specification = \"v1\"\n[[tutorials]]\nslot = \"x\"\n[[tutorials.students]]\nfirst_name = \"a\"\nattendances = { \"2024-01-01\" = \"late\" }\n"},
		{"bad points key", "specification = \"v1\"\n[[tutorials]]\nslot = \"x\"\n[[tutorials.students]]\nfirst_name = \"a\"\npoints = { \"sheet-1\" = 3 }\n"},
		{"bad criteria id", "specification = \"v1\"\n[[criteria]]\nid = \"nope\"\nidentifier = \"sheettotal\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fscourse.Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}
