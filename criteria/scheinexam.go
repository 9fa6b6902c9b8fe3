package criteria

import (
	"fmt"

	"github.com/programme-lv/schein/points"
)

// Scheinexam checks one or more exams. Each exam passes when its ratio of
// achieved to must points reaches the exam's PercentageNeeded.
type Scheinexam struct {
	Exams                       []string `json:"exams" validate:"required,min=1,unique,dive,required"`
	PassAllExamsIndividually    bool     `json:"passAllExamsIndividually"`
	PercentageOfAllPointsNeeded float64  `json:"percentageOfAllPointsNeeded" validate:"gte=0,lte=1"`
}

func (Scheinexam) Kind() Kind { return KindScheinexam }

func findExam(exams []points.Exam, id string) (points.Exam, bool) {
	for _, e := range exams {
		if e.ID == id {
			return e, true
		}
	}
	return points.Exam{}, false
}

func (c Scheinexam) Evaluate(in Input) (Status, error) {
	if len(c.Exams) == 0 || !validNumber(c.PercentageOfAllPointsNeeded) {
		return Status{}, fmt.Errorf("%w: scheinexam needs at least one exam", ErrInvalidConfig)
	}

	achieved, total := 0.0, 0.0
	allPassed := true
	infos := make(map[string]StatusInfo, len(c.Exams))
	for _, id := range c.Exams {
		exam, ok := findExam(in.Exams, id)
		if !ok {
			return Status{}, fmt.Errorf("%w: scheinexam references unknown exam %s", ErrInvalidConfig, id)
		}
		got := in.Points.SumOfPoints(exam)
		required := points.PointsOfAll(exam).Must
		examPassed := meetsRatio(got, required, exam.PercentageNeeded)

		achieved += got
		total += required
		allPassed = allPassed && examPassed
		infos[exam.ID] = StatusInfo{
			No:       exam.ExamNo,
			Achieved: got,
			Total:    required,
			State:    stateOf(examPassed),
		}
	}

	passed := meetsRatio(achieved, total, c.PercentageOfAllPointsNeeded)
	if c.PassAllExamsIndividually {
		passed = passed && allPassed
	}

	return Status{
		Identifier: KindScheinexam,
		Passed:     passed,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitExam,
		Infos:      infos,
	}, nil
}
