package fscourse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/summary"
)

const specVersion = "v1"

// Course is everything a course directory describes.
type Course struct {
	Name     string
	Catalog  summary.Catalog
	Rosters  []summary.Roster
	Criteria []criteria.Config
}

type courseToml struct {
	Specification string         `toml:"specification"`
	Name          string         `toml:"name"`
	Sheets        []sheetToml    `toml:"sheets"`
	Exams         []examToml     `toml:"exams"`
	Criteria      []criteriaToml `toml:"criteria"`
	Tutorials     []tutorialToml `toml:"tutorials"`
}

type sheetToml struct {
	ID        string               `toml:"id"`
	SheetNo   int                  `toml:"sheet_no"`
	Bonus     bool                 `toml:"bonus"`
	Exercises []points.ExerciseDTO `toml:"exercises"`
}

type examToml struct {
	ID               string               `toml:"id"`
	ExamNo           int                  `toml:"exam_no"`
	PercentageNeeded *float64             `toml:"percentage_needed"`
	Exercises        []points.ExerciseDTO `toml:"exercises"`
}

type criteriaToml struct {
	ID         string         `toml:"id"`
	Identifier string         `toml:"identifier"`
	Name       string         `toml:"name"`
	Payload    map[string]any `toml:"payload"`
}

type tutorialToml struct {
	ID       string           `toml:"id"`
	Slot     string           `toml:"slot"`
	Dates    []toml.LocalDate `toml:"dates"`
	Teams    []teamToml       `toml:"teams"`
	Students []studentToml    `toml:"students"`
}

type teamToml struct {
	ID     string         `toml:"id"`
	TeamNo int            `toml:"team_no"`
	Points map[string]any `toml:"points"`
}

type studentToml struct {
	ID              string            `toml:"id"`
	FirstName       string            `toml:"first_name"`
	LastName        string            `toml:"last_name"`
	MatriculationNo string            `toml:"matriculation_no"`
	TeamNo          int               `toml:"team_no"` // 0 means no team
	Presentations   map[string]int    `toml:"presentations"`
	Attendances     map[string]string `toml:"attendances"`
	Points          map[string]any    `toml:"points"`
}

// Read parses <dir>/course.toml.
func Read(dir string) (*Course, error) {
	path := filepath.Join(dir, "course.toml")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading course.toml: %w", err)
	}
	slog.Debug("read course file", "path", path, "bytes", len(content))
	return Parse(content)
}

func Parse(content []byte) (*Course, error) {
	var raw courseToml
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal course.toml: %w", err)
	}
	if raw.Specification != specVersion {
		return nil, fmt.Errorf("unsupported specification %q, expected %q", raw.Specification, specVersion)
	}

	course := &Course{Name: raw.Name}
	var err error
	if course.Catalog, err = raw.catalog(); err != nil {
		return nil, err
	}
	if course.Criteria, err = raw.criteria(); err != nil {
		return nil, err
	}
	for _, t := range raw.Tutorials {
		roster, err := t.roster(raw.Name)
		if err != nil {
			return nil, err
		}
		course.Rosters = append(course.Rosters, roster)
	}
	return course, nil
}

func (c courseToml) catalog() (summary.Catalog, error) {
	var catalog summary.Catalog
	seen := map[string]bool{}
	for _, s := range c.Sheets {
		if s.ID == "" || seen[s.ID] {
			return catalog, fmt.Errorf("sheet id %q is empty or duplicated", s.ID)
		}
		seen[s.ID] = true
		sheet := points.Sheet{ID: s.ID, SheetNo: s.SheetNo, Bonus: s.Bonus, Exercises: points.ExercisesFromDTO(s.Exercises)}
		if err := points.ValidateContainer(sheet); err != nil {
			return catalog, fmt.Errorf("sheet %s: %w", s.ID, err)
		}
		catalog.Sheets = append(catalog.Sheets, sheet)
	}
	for _, e := range c.Exams {
		if e.ID == "" || seen[e.ID] {
			return catalog, fmt.Errorf("exam id %q is empty or duplicated", e.ID)
		}
		seen[e.ID] = true
		needed := 0.5
		if e.PercentageNeeded != nil {
			needed = *e.PercentageNeeded
		}
		exam := points.Exam{ID: e.ID, ExamNo: e.ExamNo, PercentageNeeded: needed, Exercises: points.ExercisesFromDTO(e.Exercises)}
		if err := points.ValidateContainer(exam); err != nil {
			return catalog, fmt.Errorf("exam %s: %w", e.ID, err)
		}
		catalog.Exams = append(catalog.Exams, exam)
	}
	return catalog, nil
}

func (c courseToml) criteria() ([]criteria.Config, error) {
	res := make([]criteria.Config, 0, len(c.Criteria))
	for i, ct := range c.Criteria {
		name := strings.TrimSpace(ct.Name)
		if name == "" {
			name = ct.Identifier
		}
		id, err := stableID(ct.ID, c.Name, "criteria", name)
		if err != nil {
			return nil, fmt.Errorf("criteria #%d: %w", i+1, err)
		}
		payload := json.RawMessage("{}")
		if ct.Payload != nil {
			if payload, err = json.Marshal(ct.Payload); err != nil {
				return nil, fmt.Errorf("criteria %s payload: %w", name, err)
			}
		}
		res = append(res, criteria.Config{
			ID:         id,
			Identifier: criteria.Kind(ct.Identifier),
			Name:       name,
			Payload:    payload,
		})
	}
	return res, nil
}

func (t tutorialToml) roster(course string) (summary.Roster, error) {
	var roster summary.Roster
	id, err := stableID(t.ID, course, "tutorial", t.Slot)
	if err != nil {
		return roster, fmt.Errorf("tutorial %s: %w", t.Slot, err)
	}
	roster.Tutorial = summary.Tutorial{ID: id, Slot: t.Slot}
	for _, d := range t.Dates {
		roster.Tutorial.Dates = append(roster.Tutorial.Dates, d.AsTime(time.UTC))
	}

	teamsByNo := map[int]uuid.UUID{}
	for _, tt := range t.Teams {
		if _, dup := teamsByNo[tt.TeamNo]; dup || tt.TeamNo <= 0 {
			return roster, fmt.Errorf("tutorial %s: team_no %d is invalid or duplicated", t.Slot, tt.TeamNo)
		}
		teamID, err := stableID(tt.ID, course, "team", t.Slot, fmt.Sprint(tt.TeamNo))
		if err != nil {
			return roster, fmt.Errorf("tutorial %s team %d: %w", t.Slot, tt.TeamNo, err)
		}
		m, err := pointsFromToml(tt.Points)
		if err != nil {
			return roster, fmt.Errorf("tutorial %s team %d: %w", t.Slot, tt.TeamNo, err)
		}
		teamsByNo[tt.TeamNo] = teamID
		roster.Teams = append(roster.Teams, summary.Team{ID: teamID, TutorialID: id, TeamNo: tt.TeamNo, Points: m})
	}

	for _, st := range t.Students {
		who := strings.TrimSpace(st.FirstName + " " + st.LastName)
		studentID, err := stableID(st.ID, course, "student", st.MatriculationNo, who)
		if err != nil {
			return roster, fmt.Errorf("student %s: %w", who, err)
		}
		m, err := pointsFromToml(st.Points)
		if err != nil {
			return roster, fmt.Errorf("student %s: %w", who, err)
		}
		student := summary.Student{
			ID:                 studentID,
			FirstName:          st.FirstName,
			LastName:           st.LastName,
			MatriculationNo:    st.MatriculationNo,
			TutorialID:         id,
			Points:             m,
			PresentationPoints: st.Presentations,
			Attendances:        map[string]criteria.AttendanceState{},
		}
		if st.TeamNo != 0 {
			teamID, ok := teamsByNo[st.TeamNo]
			if !ok {
				return roster, fmt.Errorf("student %s: tutorial %s has no team %d", who, t.Slot, st.TeamNo)
			}
			student.TeamID = uuid.NullUUID{UUID: teamID, Valid: true}
		}
		for date, state := range st.Attendances {
			if _, err := time.Parse(time.DateOnly, date); err != nil {
				return roster, fmt.Errorf("student %s: attendance date %q: %w", who, date, err)
			}
			s := criteria.AttendanceState(strings.ToUpper(state))
			switch s {
			case criteria.AttendancePresent, criteria.AttendanceExcused, criteria.AttendanceUnexcused:
			default:
				return roster, fmt.Errorf("student %s: unknown attendance state %q", who, state)
			}
			student.Attendances[date] = s
		}
		roster.Students = append(roster.Students, student)
	}
	return roster, nil
}

// stableID parses explicit or derives a name based uuid so that importing
// the same file twice yields the same ids.
func stableID(explicit string, parts ...string) (uuid.UUID, error) {
	if explicit != "" {
		return uuid.Parse(explicit)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("schein:"+strings.Join(parts, "/"))), nil
}
