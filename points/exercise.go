package points

import (
	"fmt"
	"strings"
)

// PointInfo holds the non-bonus (must) and bonus point totals of an
// exercise or of a collection of exercises.
type PointInfo struct {
	Must  float64 `json:"must"`
	Bonus float64 `json:"bonus"`
}

func (p PointInfo) Add(o PointInfo) PointInfo {
	return PointInfo{Must: p.Must + o.Must, Bonus: p.Bonus + o.Bonus}
}

func (p PointInfo) Total() float64 {
	return p.Must + p.Bonus
}

// Body is either Scalar or Composite.
type Body interface {
	isBody()
}

// Scalar is an exercise graded as a whole.
type Scalar struct {
	MaxPoints float64
	Bonus     bool
}

// Composite is an exercise split into subexercises. The exercise itself
// carries no points of its own.
type Composite struct {
	Subexercises []Subexercise
}

func (Scalar) isBody()    {}
func (Composite) isBody() {}

type Subexercise struct {
	ID        string
	Name      string
	MaxPoints float64
	Bonus     bool
}

type Exercise struct {
	ID   string
	Name string
	Body Body
}

func NewExercise(id string, maxPoints float64, bonus bool) Exercise {
	return Exercise{ID: id, Body: Scalar{MaxPoints: maxPoints, Bonus: bonus}}
}

func NewCompositeExercise(id string, subs ...Subexercise) Exercise {
	return Exercise{ID: id, Body: Composite{Subexercises: subs}}
}

// HasSubexercises reports whether points are tracked per subexercise.
func (e Exercise) HasSubexercises() bool {
	_, ok := e.Body.(Composite)
	return ok
}

func (e Exercise) Subexercises() []Subexercise {
	if c, ok := e.Body.(Composite); ok {
		return c.Subexercises
	}
	return nil
}

// Container is a sheet or an exam: anything owning an ordered list of exercises.
type Container interface {
	ContainerID() string
	ExerciseList() []Exercise
}

type Sheet struct {
	ID        string
	SheetNo   int
	Bonus     bool // bonus sheets never count towards the required total
	Exercises []Exercise
}

func (s Sheet) ContainerID() string      { return s.ID }
func (s Sheet) ExerciseList() []Exercise { return s.Exercises }

type Exam struct {
	ID               string
	ExamNo           int
	PercentageNeeded float64
	Exercises        []Exercise
}

func (e Exam) ContainerID() string      { return e.ID }
func (e Exam) ExerciseList() []Exercise { return e.Exercises }

func pointInfoOf(maxPoints float64, bonus bool) PointInfo {
	maxPoints = max(maxPoints, 0)
	if bonus {
		return PointInfo{Bonus: maxPoints}
	}
	return PointInfo{Must: maxPoints}
}

// PointsOf splits the maximum points of an exercise into must and bonus
// points. For composite exercises every subexercise is bucketed by its own
// bonus flag.
func PointsOf(e Exercise) PointInfo {
	switch b := e.Body.(type) {
	case Scalar:
		return pointInfoOf(b.MaxPoints, b.Bonus)
	case Composite:
		var info PointInfo
		for _, sub := range b.Subexercises {
			info = info.Add(pointInfoOf(sub.MaxPoints, sub.Bonus))
		}
		return info
	default:
		return PointInfo{}
	}
}

func PointsOfAll(c Container) PointInfo {
	var info PointInfo
	for _, e := range c.ExerciseList() {
		info = info.Add(PointsOf(e))
	}
	return info
}

// SheetTotalRequiredPoints is the denominator used for sheet percentages.
func SheetTotalRequiredPoints(s Sheet) float64 {
	return PointsOfAll(s).Must
}

// ValidateContainer checks the sheet or exam id and its exercises. Ids
// must not contain the point key separator.
func ValidateContainer(c Container) error {
	if c.ContainerID() == "" {
		return fmt.Errorf("id is required")
	}
	if strings.Contains(c.ContainerID(), keySeparator) {
		return fmt.Errorf("id %q must not contain %q", c.ContainerID(), keySeparator)
	}
	return ValidateExercises(c.ExerciseList())
}

// ValidateExercises checks that exercise and subexercise ids are unique and
// that no maximum is negative.
func ValidateExercises(exercises []Exercise) error {
	seen := map[string]bool{}
	for _, e := range exercises {
		if e.ID == "" {
			return fmt.Errorf("exercise id is required")
		}
		if strings.Contains(e.ID, keySeparator) {
			return fmt.Errorf("exercise id %q must not contain %q", e.ID, keySeparator)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate exercise id: %s", e.ID)
		}
		seen[e.ID] = true

		switch b := e.Body.(type) {
		case Scalar:
			if b.MaxPoints < 0 {
				return fmt.Errorf("exercise %s has negative max points", e.ID)
			}
		case Composite:
			subSeen := map[string]bool{}
			for _, sub := range b.Subexercises {
				if sub.ID == "" {
					return fmt.Errorf("subexercise id required in exercise %s", e.ID)
				}
				if subSeen[sub.ID] {
					return fmt.Errorf("duplicate subexercise id %s in exercise %s", sub.ID, e.ID)
				}
				subSeen[sub.ID] = true
				if sub.MaxPoints < 0 {
					return fmt.Errorf("subexercise %s/%s has negative max points", e.ID, sub.ID)
				}
			}
		default:
			return fmt.Errorf("exercise %s has no body", e.ID)
		}
	}
	return nil
}
