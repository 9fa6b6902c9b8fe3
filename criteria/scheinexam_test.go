package criteria_test

import (
	"testing"
	"time"

	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exam(id string, no int, needed float64) points.Exam {
	return points.Exam{
		ID:               id,
		ExamNo:           no,
		PercentageNeeded: needed,
		Exercises: []points.Exercise{
			points.NewExercise("1", 30, false),
			points.NewCompositeExercise("2",
				points.Subexercise{ID: "a", MaxPoints: 20},
				points.Subexercise{ID: "b", MaxPoints: 10, Bonus: true},
			),
		},
	}
}

func examPoints(examID string, ex1, subA, subB float64) points.Map {
	m := points.NewMap()
	m.SetEntry(examID, "1", points.Entry{Points: points.ScalarPoints(ex1)})
	m.SetEntry(examID, "2", points.Entry{Points: points.SubPoints{"a": subA, "b": subB}})
	return m
}

func TestScheinexamSingleExam(t *testing.T) {
	exams := []points.Exam{exam("e1", 1, 0.5)}
	c := criteria.Scheinexam{Exams: []string{"e1"}, PassAllExamsIndividually: true}

	st, err := c.Evaluate(criteria.Input{Points: examPoints("e1", 20, 4, 1), Exams: exams})
	require.NoError(t, err)
	assert.Equal(t, 25.0, st.Achieved)
	assert.Equal(t, 50.0, st.Total)
	assert.True(t, st.Passed)
	assert.Equal(t, criteria.UnitExam, st.Unit)
	assert.Equal(t, criteria.StatusInfo{No: 1, Achieved: 25, Total: 50, State: criteria.StatePassed}, st.Infos["e1"])

	st, err = c.Evaluate(criteria.Input{Points: examPoints("e1", 20, 4, 0.5), Exams: exams})
	require.NoError(t, err)
	assert.False(t, st.Passed)
	assert.Equal(t, criteria.StateNotPassed, st.Infos["e1"].State)
}

func TestScheinexamZeroTotalPasses(t *testing.T) {
	exams := []points.Exam{{ID: "e1", PercentageNeeded: 0.5}}
	st, err := criteria.Scheinexam{Exams: []string{"e1"}, PassAllExamsIndividually: true}.Evaluate(criteria.Input{Exams: exams})
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.Total)
	assert.True(t, st.Passed)
}

func TestScheinexamMultipleExams(t *testing.T) {
	exams := []points.Exam{exam("e1", 1, 0.5), exam("e2", 2, 0.5)}
	m := examPoints("e1", 30, 20, 0)    // 50/50
	m.Merge(examPoints("e2", 10, 0, 0)) // 10/50

	t.Run("individually", func(t *testing.T) {
		c := criteria.Scheinexam{Exams: []string{"e1", "e2"}, PassAllExamsIndividually: true}
		st, err := c.Evaluate(criteria.Input{Points: m, Exams: exams})
		require.NoError(t, err)
		assert.False(t, st.Passed)
		assert.Equal(t, 60.0, st.Achieved)
		assert.Equal(t, 100.0, st.Total)
	})
	t.Run("combined", func(t *testing.T) {
		c := criteria.Scheinexam{Exams: []string{"e1", "e2"}, PercentageOfAllPointsNeeded: 0.6}
		st, err := c.Evaluate(criteria.Input{Points: m, Exams: exams})
		require.NoError(t, err)
		assert.True(t, st.Passed)
	})
}

func TestScheinexamUnknownExam(t *testing.T) {
	_, err := criteria.Scheinexam{Exams: []string{"missing"}}.Evaluate(criteria.Input{})
	assert.ErrorIs(t, err, criteria.ErrInvalidConfig)
}

func TestPresentation(t *testing.T) {
	sheets := []points.Sheet{{ID: "s1", SheetNo: 1}, {ID: "s2", SheetNo: 2}}
	in := criteria.Input{Sheets: sheets, PresentationPoints: map[string]int{"s1": 1, "s2": 1}}

	st, err := criteria.Presentation{PresentationsNeeded: 2}.Evaluate(in)
	require.NoError(t, err)
	assert.True(t, st.Passed)
	assert.Equal(t, 2.0, st.Achieved)
	assert.Equal(t, 2.0, st.Total)
	assert.Equal(t, criteria.UnitPresentation, st.Unit)
	assert.Equal(t, criteria.StateIgnore, st.Infos["s2"].State)

	st, err = criteria.Presentation{PresentationsNeeded: 3}.Evaluate(in)
	require.NoError(t, err)
	assert.False(t, st.Passed)
}

func TestAttendance(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 10, d, 10, 0, 0, 0, time.UTC) }
	dates := []time.Time{day(7), day(14), day(21), day(28)}
	in := criteria.Input{
		TutorialDates: dates,
		Attendances: map[string]criteria.AttendanceState{
			"2024-10-07": criteria.AttendancePresent,
			"2024-10-14": criteria.AttendanceExcused,
			"2024-10-21": criteria.AttendanceUnexcused,
		},
	}

	st, err := criteria.Attendance{Percentage: true, ValueNeeded: 0.5}.Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, 2.0, st.Achieved)
	assert.Equal(t, 2.0, st.Total)
	assert.True(t, st.Passed)
	assert.Equal(t, criteria.UnitDate, st.Unit)
	assert.Equal(t, criteria.StatusInfo{No: 2, Achieved: 1, Total: 1, State: criteria.StatePassed}, st.Infos["2024-10-14"])
	assert.Equal(t, criteria.StateNotPassed, st.Infos["2024-10-28"].State)

	st, err = criteria.Attendance{ValueNeeded: 3}.Evaluate(in)
	require.NoError(t, err)
	assert.False(t, st.Passed)
	assert.Equal(t, 3.0, st.Total)
}

func TestAttendanceCountsEachDateOnce(t *testing.T) {
	monday := time.Date(2024, 10, 7, 10, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 10, 7, 18, 0, 0, 0, time.UTC)
	next := time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC)
	in := criteria.Input{
		TutorialDates: []time.Time{monday, evening, next},
		Attendances:   map[string]criteria.AttendanceState{"2024-10-07": criteria.AttendancePresent},
	}

	st, err := criteria.Attendance{Percentage: true, ValueNeeded: 0.5}.Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Achieved)
	assert.Equal(t, 1.0, st.Total)
	assert.True(t, st.Passed)
	require.Len(t, st.Infos, 2)
	assert.Equal(t, 1, st.Infos["2024-10-07"].No)
	assert.Equal(t, 2, st.Infos["2024-10-14"].No)
}
