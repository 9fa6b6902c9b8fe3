package points_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/programme-lv/schein/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func randomMap(r *rand.Rand, sheets, exercises int) points.Map {
	m := points.NewMap()
	for s := 0; s < sheets; s++ {
		for e := 0; e < exercises; e++ {
			if r.Intn(2) == 0 {
				continue
			}
			m.SetEntry(fmt.Sprintf("s%d", s), fmt.Sprint(e), points.Entry{
				Comment: fmt.Sprintf("c%d", r.Intn(100)),
				Points:  points.ScalarPoints(float64(r.Intn(20))),
			})
		}
	}
	return m
}

func TestResolveRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 50; n++ {
		team := randomMap(r, 4, 5)
		student := randomMap(r, 4, 5)
		resolved := points.Resolve(team, student)

		for s := 0; s < 4; s++ {
			for e := 0; e < 5; e++ {
				sheet, ex := fmt.Sprintf("s%d", s), fmt.Sprint(e)
				got, ok := resolved.Entry(sheet, ex)
				if own, has := student.Entry(sheet, ex); has {
					require.True(t, ok)
					assert.Equal(t, own, got)
				} else if shared, has := team.Entry(sheet, ex); has {
					require.True(t, ok)
					assert.Equal(t, shared, got)
				} else {
					assert.False(t, ok)
				}
			}
		}
		// resolved covers both inputs
		assert.LessOrEqual(t, team.Len(), resolved.Len())
		assert.LessOrEqual(t, student.Len(), resolved.Len())
	}
}

func randomValue(r *rand.Rand) points.Value {
	switch r.Intn(4) {
	case 0:
		return nil
	case 1:
		return points.ScalarPoints(float64(r.Intn(40)) / 2)
	case 2:
		var subs points.SubPoints
		return subs
	default:
		subs := points.SubPoints{}
		for i, count := 0, r.Intn(3); i < count; i++ {
			subs[string(rune('a'+i))] = float64(r.Intn(10))
		}
		return subs
	}
}

func TestDTORoundTripRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		m := points.NewMap()
		for k, count := 0, r.Intn(8); k < count; k++ {
			m.SetEntry(fmt.Sprintf("s%d", r.Intn(3)), fmt.Sprint(r.Intn(4)), points.Entry{
				Comment: fmt.Sprintf("c%d", r.Intn(5)),
				Points:  randomValue(r),
			})
		}

		dto, err := m.ToDTO()
		require.NoError(t, err)
		raw, err := json.Marshal(dto)
		require.NoError(t, err)

		var decoded points.MapDTO
		require.NoError(t, json.Unmarshal(raw, &decoded))
		back, err := points.FromDTO(decoded)
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
}
