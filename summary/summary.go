package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"golang.org/x/sync/errgroup"
)

type Student struct {
	ID                 uuid.UUID
	FirstName          string
	LastName           string
	MatriculationNo    string
	TutorialID         uuid.UUID
	TeamID             uuid.NullUUID
	Points             points.Map
	PresentationPoints map[string]int
	Attendances        map[string]criteria.AttendanceState
}

type Team struct {
	ID         uuid.UUID
	TutorialID uuid.UUID
	TeamNo     int
	Points     points.Map
}

type Tutorial struct {
	ID    uuid.UUID
	Slot  string
	Dates []time.Time
}

// Catalog holds every sheet and exam of the course.
type Catalog struct {
	Sheets []points.Sheet
	Exams  []points.Exam
}

// Roster is a tutorial with its students and teams.
type Roster struct {
	Tutorial Tutorial
	Students []Student
	Teams    []Team
}

func (r Roster) team(id uuid.NullUUID) *Team {
	if !id.Valid {
		return nil
	}
	for i := range r.Teams {
		if r.Teams[i].ID == id.UUID {
			return &r.Teams[i]
		}
	}
	return nil
}

// Summary is the outcome of all configured criteria for one student,
// keyed by criteria config id.
type Summary struct {
	Passed   bool                       `json:"passed"`
	Criteria map[string]criteria.Status `json:"scheinCriteriaSummary"`
}

type Option func(*Builder)

// WithConcurrency bounds the number of students evaluated at once.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

type Builder struct {
	registry    *criteria.Registry
	concurrency int
}

func NewBuilder(registry *criteria.Registry, opts ...Option) *Builder {
	b := &Builder{registry: registry, concurrency: 8}
	for _, o := range opts {
		o(b)
	}
	return b
}

type parsedConfig struct {
	cfg      criteria.Config
	criteria criteria.Criteria
}

func (b *Builder) parse(configs []criteria.Config) ([]parsedConfig, error) {
	res := make([]parsedConfig, 0, len(configs))
	seen := make(map[uuid.UUID]bool, len(configs))
	for _, cfg := range configs {
		if seen[cfg.ID] {
			return nil, fmt.Errorf("duplicate criteria config id %s", cfg.ID)
		}
		seen[cfg.ID] = true

		c, err := b.registry.Parse(cfg)
		if err != nil {
			return nil, fmt.Errorf("criteria %s (%s): %w", cfg.ID, cfg.Identifier, err)
		}
		res = append(res, parsedConfig{cfg: cfg, criteria: c})
	}
	return res, nil
}

// EffectivePoints resolves the point map used for evaluation: individual
// entries win over the team's entry for the same sheet and exercise.
func EffectivePoints(student Student, team *Team) points.Map {
	if team == nil {
		return student.Points
	}
	return points.Resolve(team.Points, student.Points)
}

func (b *Builder) evaluate(parsed []parsedConfig, student Student, team *Team, catalog Catalog, tutorial Tutorial) (Summary, error) {
	in := criteria.Input{
		Points:             EffectivePoints(student, team),
		Sheets:             catalog.Sheets,
		Exams:              catalog.Exams,
		PresentationPoints: student.PresentationPoints,
		Attendances:        student.Attendances,
		TutorialDates:      tutorial.Dates,
	}

	res := Summary{Passed: true, Criteria: make(map[string]criteria.Status, len(parsed))}
	for _, p := range parsed {
		status, err := p.criteria.Evaluate(in)
		if err != nil {
			return Summary{}, fmt.Errorf("evaluating criteria %s (%s) for student %s: %w",
				p.cfg.ID, p.cfg.Identifier, student.ID, err)
		}
		status.ID = p.cfg.ID.String()
		status.Identifier = p.cfg.Identifier
		status.Name = p.cfg.Name
		res.Criteria[status.ID] = status
		res.Passed = res.Passed && status.Passed
	}
	return res, nil
}

// BuildSummary evaluates every config for one student. Any failing
// criteria aborts the whole summary. Zero configs pass vacuously.
func (b *Builder) BuildSummary(student Student, team *Team, configs []criteria.Config, catalog Catalog, tutorial Tutorial) (Summary, error) {
	parsed, err := b.parse(configs)
	if err != nil {
		return Summary{}, err
	}
	return b.evaluate(parsed, student, team, catalog, tutorial)
}

// BuildSummaryForTutorial evaluates all students of a roster in parallel.
// Cancelling ctx stops scheduling further students.
func (b *Builder) BuildSummaryForTutorial(ctx context.Context, roster Roster, configs []criteria.Config, catalog Catalog) (map[uuid.UUID]Summary, error) {
	parsed, err := b.parse(configs)
	if err != nil {
		return nil, err
	}

	results := make([]Summary, len(roster.Students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, student := range roster.Students {
		if gctx.Err() != nil {
			break
		}
		i, student := i, student
		team := roster.team(student.TeamID)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := b.evaluate(parsed, student, team, catalog, roster.Tutorial)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := make(map[uuid.UUID]Summary, len(results))
	for i, student := range roster.Students {
		res[student.ID] = results[i]
	}
	return res, nil
}
