package criteria

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/points"
)

type Kind string

const (
	KindSheetTotal      Kind = "sheettotal"
	KindSheetIndividual Kind = "sheetindividual"
	KindScheinexam      Kind = "scheinexam"
	KindPresentation    Kind = "presentation"
	KindAttendance      Kind = "attendance"
)

type Unit string

const (
	UnitSheet        Unit = "sheet"
	UnitPoint        Unit = "point"
	UnitExam         Unit = "exam"
	UnitPresentation Unit = "presentation"
	UnitDate         Unit = "date"
)

type State string

const (
	StatePassed    State = "PASSED"
	StateNotPassed State = "NOTPASSED"
	StateIgnore    State = "IGNORE"
)

func stateOf(passed bool) State {
	if passed {
		return StatePassed
	}
	return StateNotPassed
}

type AttendanceState string

const (
	AttendancePresent   AttendanceState = "PRESENT"
	AttendanceExcused   AttendanceState = "EXCUSED"
	AttendanceUnexcused AttendanceState = "UNEXCUSED"
)

var (
	ErrDuplicateCriteria = errors.New("criteria already registered")
	ErrUnknownCriteria   = errors.New("unknown criteria")
	ErrInvalidConfig     = errors.New("invalid criteria configuration")
	ErrRegistryFrozen    = errors.New("criteria registry is frozen")
)

// Config is an administrator defined criteria instance. Payload holds the
// kind specific parameters as JSON.
type Config struct {
	ID         uuid.UUID       `json:"id"`
	Identifier Kind            `json:"identifier"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
}

// Input is everything an evaluator may look at for one student. All fields
// are fully materialized and read only.
type Input struct {
	Points             points.Map // effective map, team entries already resolved
	Sheets             []points.Sheet
	Exams              []points.Exam
	PresentationPoints map[string]int             // sheet id -> presentations
	Attendances        map[string]AttendanceState // date (YYYY-MM-DD) -> state
	TutorialDates      []time.Time
}

type StatusInfo struct {
	No       int     `json:"no"`
	Achieved float64 `json:"achieved"`
	Total    float64 `json:"total"`
	State    State   `json:"state"`
}

type Status struct {
	ID         string                `json:"id"`
	Identifier Kind                  `json:"identifier"`
	Name       string                `json:"name"`
	Passed     bool                  `json:"passed"`
	Achieved   float64               `json:"achieved"`
	Total      float64               `json:"total"`
	Unit       Unit                  `json:"unit"`
	Infos      map[string]StatusInfo `json:"infos"`
}

// Criteria evaluates one kind of requirement for a single student.
type Criteria interface {
	Kind() Kind
	Evaluate(in Input) (Status, error)
}

// meetsRatio reports achieved/total >= needed. A zero total always passes.
func meetsRatio(achieved, total, needed float64) bool {
	if total <= 0 {
		return true
	}
	return achieved/total >= needed
}

// requiredCount converts a percentage or absolute threshold into the
// number of items needed out of n.
func requiredCount(percentage bool, value float64, n int) float64 {
	if !percentage {
		return value
	}
	// 0.6*5 is 3.0000000000000004 in floating point
	return math.Max(0, math.Ceil(value*float64(n)-1e-9))
}

func validNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}
