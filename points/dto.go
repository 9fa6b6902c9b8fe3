package points

// ExerciseDTO is the flat exercise shape used by storage and course files.
type ExerciseDTO struct {
	ID           string           `json:"id" toml:"id"`
	Name         string           `json:"name,omitempty" toml:"name"`
	MaxPoints    float64          `json:"maxPoints" toml:"max_points"`
	Bonus        bool             `json:"bonus,omitempty" toml:"bonus"`
	Subexercises []SubexerciseDTO `json:"subexercises,omitempty" toml:"subexercises"`
}

type SubexerciseDTO struct {
	ID        string  `json:"id" toml:"id"`
	Name      string  `json:"name,omitempty" toml:"name"`
	MaxPoints float64 `json:"maxPoints" toml:"max_points"`
	Bonus     bool    `json:"bonus,omitempty" toml:"bonus"`
}

// ToExercise converts the flat shape. When subexercises are present the
// parent's MaxPoints and Bonus are dropped.
func (d ExerciseDTO) ToExercise() Exercise {
	if len(d.Subexercises) == 0 {
		return Exercise{ID: d.ID, Name: d.Name, Body: Scalar{MaxPoints: d.MaxPoints, Bonus: d.Bonus}}
	}
	subs := make([]Subexercise, 0, len(d.Subexercises))
	for _, s := range d.Subexercises {
		subs = append(subs, Subexercise{ID: s.ID, Name: s.Name, MaxPoints: s.MaxPoints, Bonus: s.Bonus})
	}
	return Exercise{ID: d.ID, Name: d.Name, Body: Composite{Subexercises: subs}}
}

func ExerciseToDTO(e Exercise) ExerciseDTO {
	dto := ExerciseDTO{ID: e.ID, Name: e.Name}
	switch b := e.Body.(type) {
	case Scalar:
		dto.MaxPoints = b.MaxPoints
		dto.Bonus = b.Bonus
	case Composite:
		for _, s := range b.Subexercises {
			dto.Subexercises = append(dto.Subexercises, SubexerciseDTO{
				ID:        s.ID,
				Name:      s.Name,
				MaxPoints: s.MaxPoints,
				Bonus:     s.Bonus,
			})
		}
	}
	return dto
}

func ExercisesFromDTO(dtos []ExerciseDTO) []Exercise {
	res := make([]Exercise, 0, len(dtos))
	for _, d := range dtos {
		res = append(res, d.ToExercise())
	}
	return res
}

func ExercisesToDTO(exercises []Exercise) []ExerciseDTO {
	res := make([]ExerciseDTO, 0, len(exercises))
	for _, e := range exercises {
		res = append(res, ExerciseToDTO(e))
	}
	return res
}
