package criteria

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Presentation struct {
	PresentationsNeeded int `json:"presentationsNeeded" validate:"gte=0"`
}

func (Presentation) Kind() Kind { return KindPresentation }

func (c Presentation) Evaluate(in Input) (Status, error) {
	if c.PresentationsNeeded < 0 {
		return Status{}, fmt.Errorf("%w: presentationsNeeded %d", ErrInvalidConfig, c.PresentationsNeeded)
	}

	achieved := 0
	for _, n := range in.PresentationPoints {
		achieved += max(n, 0)
	}

	infos := make(map[string]StatusInfo, len(in.Sheets))
	for _, sheet := range in.Sheets {
		infos[sheet.ID] = StatusInfo{
			No:       sheet.SheetNo,
			Achieved: float64(max(in.PresentationPoints[sheet.ID], 0)),
			State:    StateIgnore,
		}
	}

	return Status{
		Identifier: KindPresentation,
		Passed:     achieved >= c.PresentationsNeeded,
		Achieved:   float64(achieved),
		Total:      float64(c.PresentationsNeeded),
		Unit:       UnitPresentation,
		Infos:      infos,
	}, nil
}

// Attendance counts tutorial dates where the student was present or
// excused.
type Attendance struct {
	Percentage  bool    `json:"percentage"`
	ValueNeeded float64 `json:"valueNeeded" validate:"gte=0"`
}

func (Attendance) Kind() Kind { return KindAttendance }

func attendanceStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(Attendance)
	reportPercentage(sl, c.Percentage, c.ValueNeeded, "valueNeeded", "ValueNeeded")
}

func attended(s AttendanceState) bool {
	return s == AttendancePresent || s == AttendanceExcused
}

func (c Attendance) Evaluate(in Input) (Status, error) {
	if !validNumber(c.ValueNeeded) {
		return Status{}, fmt.Errorf("%w: attendance valueNeeded %v", ErrInvalidConfig, c.ValueNeeded)
	}

	achieved := 0
	infos := make(map[string]StatusInfo, len(in.TutorialDates))
	for _, date := range in.TutorialDates {
		key := date.Format(time.DateOnly)
		if _, dup := infos[key]; dup {
			continue
		}
		ok := attended(in.Attendances[key])
		got := 0.0
		if ok {
			achieved++
			got = 1
		}
		infos[key] = StatusInfo{
			No:       len(infos) + 1,
			Achieved: got,
			Total:    1,
			State:    stateOf(ok),
		}
	}

	needed := requiredCount(c.Percentage, c.ValueNeeded, len(infos))
	return Status{
		Identifier: KindAttendance,
		Passed:     float64(achieved) >= needed,
		Achieved:   float64(achieved),
		Total:      needed,
		Unit:       UnitDate,
		Infos:      infos,
	}, nil
}
