package criteria_test

import (
	"testing"
	"time"

	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sheet with 20 must points and a composite exercise of 10 must + 4 bonus
func mixedSheet(id string, no int, bonus bool) points.Sheet {
	return points.Sheet{
		ID:      id,
		SheetNo: no,
		Bonus:   bonus,
		Exercises: []points.Exercise{
			points.NewExercise("1", 20, false),
			points.NewCompositeExercise("2",
				points.Subexercise{ID: "a", MaxPoints: 10},
				points.Subexercise{ID: "b", MaxPoints: 4, Bonus: true},
			),
		},
	}
}

func scored(sheetID string, ex1 float64, subA, subB float64) points.Map {
	m := points.NewMap()
	m.SetEntry(sheetID, "1", points.Entry{Points: points.ScalarPoints(ex1)})
	m.SetEntry(sheetID, "2", points.Entry{Points: points.SubPoints{"a": subA, "b": subB}})
	return m
}

func TestSheetTotalMixedSheet(t *testing.T) {
	sheet := mixedSheet("s1", 1, false)
	in := criteria.Input{Points: scored("s1", 18, 7, 2), Sheets: []points.Sheet{sheet}}

	st, err := criteria.SheetTotal{Percentage: true, ValueNeeded: 0.5}.Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, 27.0, st.Achieved)
	assert.Equal(t, 30.0, st.Total)
	assert.True(t, st.Passed)
	assert.Equal(t, criteria.UnitPoint, st.Unit)
	assert.Equal(t, criteria.KindSheetTotal, st.Identifier)
	require.Contains(t, st.Infos, "s1")
	assert.Equal(t, criteria.StatusInfo{No: 1, Achieved: 27, Total: 30, State: criteria.StateIgnore}, st.Infos["s1"])
}

func TestSheetTotalAbsolute(t *testing.T) {
	sheet := mixedSheet("s1", 1, false)
	in := criteria.Input{Points: scored("s1", 18, 7, 2), Sheets: []points.Sheet{sheet}}

	st, err := criteria.SheetTotal{ValueNeeded: 27}.Evaluate(in)
	require.NoError(t, err)
	assert.True(t, st.Passed)

	st, err = criteria.SheetTotal{ValueNeeded: 27.5}.Evaluate(in)
	require.NoError(t, err)
	assert.False(t, st.Passed)
}

func TestSheetTotalBonusSheetOnlyAddsToAchieved(t *testing.T) {
	regular := mixedSheet("s1", 1, false)
	bonus := mixedSheet("s2", 2, true)
	m := scored("s1", 5, 0, 0)
	m.Merge(scored("s2", 10, 0, 0))

	st, err := criteria.SheetTotal{Percentage: true, ValueNeeded: 0.5}.Evaluate(criteria.Input{
		Points: m,
		Sheets: []points.Sheet{regular, bonus},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, st.Achieved)
	assert.Equal(t, 30.0, st.Total)
	assert.True(t, st.Passed)
	assert.Len(t, st.Infos, 2)
}

func TestSheetTotalZeroTotal(t *testing.T) {
	t.Run("no sheets", func(t *testing.T) {
		st, err := criteria.SheetTotal{Percentage: true, ValueNeeded: 0.5}.Evaluate(criteria.Input{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, st.Achieved)
		assert.Equal(t, 0.0, st.Total)
		assert.True(t, st.Passed)
		assert.NotNil(t, st.Infos)
		assert.Empty(t, st.Infos)
	})
	t.Run("only bonus sheets", func(t *testing.T) {
		st, err := criteria.SheetTotal{Percentage: true, ValueNeeded: 1}.Evaluate(criteria.Input{
			Sheets: []points.Sheet{mixedSheet("b", 1, true)},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, st.Total)
		assert.True(t, st.Passed)
	})
}

func TestSheetTotalRejectsBrokenConfig(t *testing.T) {
	_, err := criteria.SheetTotal{ValueNeeded: -1}.Evaluate(criteria.Input{})
	assert.ErrorIs(t, err, criteria.ErrInvalidConfig)
}

func TestSheetIndividual(t *testing.T) {
	sheets := []points.Sheet{
		mixedSheet("s1", 1, false),
		mixedSheet("s2", 2, false),
		mixedSheet("s3", 3, false),
		mixedSheet("s4", 4, true),
	}
	m := scored("s1", 20, 10, 0)    // 30/30
	m.Merge(scored("s2", 10, 0, 0)) // 10/30
	m.Merge(scored("s4", 20, 0, 0)) // bonus sheet 20/30

	c := criteria.SheetIndividual{Percentage: true, ValueNeeded: 0.6, PercentagePerSheet: true, ValuePerSheetNeeded: 0.5}
	st, err := c.Evaluate(criteria.Input{Points: m, Sheets: sheets})
	require.NoError(t, err)

	// ceil(0.6 * 3 regular sheets) = 2
	assert.Equal(t, 2.0, st.Total)
	assert.Equal(t, 2.0, st.Achieved)
	assert.True(t, st.Passed)
	assert.Equal(t, criteria.UnitSheet, st.Unit)
	assert.Equal(t, criteria.StatePassed, st.Infos["s1"].State)
	assert.Equal(t, criteria.StateNotPassed, st.Infos["s2"].State)
	assert.Equal(t, criteria.StateNotPassed, st.Infos["s3"].State)
	assert.Equal(t, criteria.StatePassed, st.Infos["s4"].State)
}

func TestSheetIndividualAbsolutePerSheet(t *testing.T) {
	sheets := []points.Sheet{mixedSheet("s1", 1, false), mixedSheet("s2", 2, false)}
	m := scored("s1", 12, 0, 0)
	m.Merge(scored("s2", 11, 0, 0))

	c := criteria.SheetIndividual{ValueNeeded: 2, ValuePerSheetNeeded: 12}
	st, err := c.Evaluate(criteria.Input{Points: m, Sheets: sheets})
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Achieved)
	assert.Equal(t, 2.0, st.Total)
	assert.False(t, st.Passed)
}

func TestSheetIndividualRequiredCountRounding(t *testing.T) {
	var sheets []points.Sheet
	m := points.NewMap()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		sheets = append(sheets, points.Sheet{ID: id, SheetNo: i + 1, Exercises: []points.Exercise{points.NewExercise("1", 10, false)}})
		if i < 3 {
			m.SetEntry(id, "1", points.Entry{Points: points.ScalarPoints(10)})
		}
	}

	c := criteria.SheetIndividual{Percentage: true, ValueNeeded: 0.6, PercentagePerSheet: true, ValuePerSheetNeeded: 0.5}
	st, err := c.Evaluate(criteria.Input{Points: m, Sheets: sheets})
	require.NoError(t, err)
	assert.Equal(t, 3.0, st.Total)
	assert.True(t, st.Passed)
}

func TestNoDataNeverErrors(t *testing.T) {
	dates := []time.Time{time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)}
	in := criteria.Input{
		Sheets:        []points.Sheet{mixedSheet("s1", 1, false)},
		Exams:         []points.Exam{{ID: "e1", PercentageNeeded: 0.5, Exercises: []points.Exercise{points.NewExercise("1", 10, false)}}},
		TutorialDates: dates,
	}
	all := []criteria.Criteria{
		criteria.SheetTotal{Percentage: true, ValueNeeded: 0.5},
		criteria.SheetIndividual{Percentage: true, ValueNeeded: 0.5, PercentagePerSheet: true, ValuePerSheetNeeded: 0.5},
		criteria.Scheinexam{Exams: []string{"e1"}, PassAllExamsIndividually: true},
		criteria.Presentation{PresentationsNeeded: 1},
		criteria.Attendance{Percentage: true, ValueNeeded: 0.5},
	}
	for _, c := range all {
		t.Run(string(c.Kind()), func(t *testing.T) {
			st, err := c.Evaluate(in)
			require.NoError(t, err)
			assert.Equal(t, 0.0, st.Achieved)
			assert.False(t, st.Passed)
			assert.NotNil(t, st.Infos)
		})
	}
}
