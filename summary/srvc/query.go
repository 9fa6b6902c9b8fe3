package srvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/logger"
	"github.com/programme-lv/schein/summary"
)

func (s *SummarySrvc) GetStudentSummary(ctx context.Context, studentID uuid.UUID) (summary.Summary, error) {
	student, err := s.repo.GetStudent(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return summary.Summary{}, NewErrorStudentNotFound(studentID)
	}
	if err != nil {
		return summary.Summary{}, fmt.Errorf("failed to get student: %w", err)
	}

	team, err := s.studentTeam(ctx, student)
	if err != nil {
		return summary.Summary{}, err
	}

	tutorial, err := s.repo.GetTutorial(ctx, student.TutorialID)
	if err != nil {
		return summary.Summary{}, fmt.Errorf("failed to get tutorial of student: %w", err)
	}

	catalog, configs, err := s.evaluationInputs(ctx)
	if err != nil {
		return summary.Summary{}, err
	}

	res, err := s.builder.BuildSummary(student, team, configs, catalog, tutorial)
	if err != nil {
		return summary.Summary{}, evaluationError(err)
	}
	logger.FromContext(ctx).Debug("built summary",
		"student_id", studentID,
		"criteria", len(configs),
		"passed", res.Passed)
	return res, nil
}

// studentTeam loads the team of a student. A dangling team reference is
// treated as no team.
func (s *SummarySrvc) studentTeam(ctx context.Context, student summary.Student) (*summary.Team, error) {
	if !student.TeamID.Valid {
		return nil, nil
	}
	team, err := s.repo.GetTeam(ctx, student.TeamID.UUID)
	if errors.Is(err, ErrNotFound) {
		logger.FromContext(ctx).Warn("student references missing team",
			"student_id", student.ID,
			"team_id", student.TeamID.UUID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

func (s *SummarySrvc) evaluationInputs(ctx context.Context) (summary.Catalog, []criteria.Config, error) {
	catalog, err := s.repo.GetCatalog(ctx)
	if err != nil {
		return summary.Catalog{}, nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	configs, err := s.repo.ListCriteria(ctx)
	if err != nil {
		return summary.Catalog{}, nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	return catalog, configs, nil
}

func (s *SummarySrvc) GetTutorialSummaries(ctx context.Context, tutorialID uuid.UUID) (map[uuid.UUID]summary.Summary, error) {
	roster, err := s.repo.GetRoster(ctx, tutorialID)
	if errors.Is(err, ErrNotFound) {
		return nil, NewErrorTutorialNotFound(tutorialID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}

	catalog, configs, err := s.evaluationInputs(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.builder.BuildSummaryForTutorial(ctx, roster, configs, catalog)
	if err != nil {
		return nil, evaluationError(err)
	}
	logger.FromContext(ctx).Debug("built tutorial summaries",
		"tutorial_id", tutorialID,
		"students", len(res))
	return res, nil
}

func (s *SummarySrvc) ListCriteriaKinds(ctx context.Context) ([]CriteriaKind, error) {
	blueprints := s.registry.Kinds()
	res := make([]CriteriaKind, 0, len(blueprints))
	for _, b := range blueprints {
		payload, err := criteria.Normalize(b.New())
		if err != nil {
			return nil, err
		}
		res = append(res, CriteriaKind{Identifier: b.Kind, Name: b.Name, DefaultPayload: payload})
	}
	return res, nil
}

func (s *SummarySrvc) ListCriteria(ctx context.Context) ([]criteria.Config, error) {
	configs, err := s.repo.ListCriteria(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	return configs, nil
}
