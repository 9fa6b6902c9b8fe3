package srvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/logger"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/srvcerror"
	"github.com/programme-lv/schein/summary"
)

// ValidateCriteria checks a payload and returns it with defaults filled in.
func (s *SummarySrvc) ValidateCriteria(ctx context.Context, kind criteria.Kind, payload json.RawMessage) (json.RawMessage, error) {
	c, fields, err := s.registry.Validate(kind, payload)
	if errors.Is(err, criteria.ErrUnknownCriteria) {
		return nil, NewErrorUnknownCriteria(kind)
	}
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, NewErrorCriteriaInvalid(fields)
	}
	return criteria.Normalize(c)
}

func (s *SummarySrvc) CreateCriteria(ctx context.Context, name string, kind criteria.Kind, payload json.RawMessage) (criteria.Config, error) {
	normalized, err := s.ValidateCriteria(ctx, kind, payload)
	if err != nil {
		return criteria.Config{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return criteria.Config{}, srvcerror.ErrInvalidRequest("criteria name must not be empty").
			SetFields([]srvcerror.FieldError{{Path: "name", Message: "name is a required field"}})
	}

	cfg := criteria.Config{
		ID:         uuid.New(),
		Identifier: kind,
		Name:       name,
		Payload:    normalized,
	}
	if err := s.repo.CreateCriteria(ctx, cfg); err != nil {
		return criteria.Config{}, fmt.Errorf("failed to store criteria: %w", err)
	}
	logger.FromContext(ctx).Info("created criteria",
		"criteria_id", cfg.ID,
		"identifier", cfg.Identifier)
	return cfg, nil
}

func (s *SummarySrvc) SetStudentPoints(ctx context.Context, studentID uuid.UUID, dto points.MapDTO) error {
	m, err := s.checkedPointMap(ctx, dto)
	if err != nil {
		return err
	}
	err = s.repo.SetStudentPoints(ctx, studentID, m)
	if errors.Is(err, ErrNotFound) {
		return NewErrorStudentNotFound(studentID)
	}
	if err != nil {
		return fmt.Errorf("failed to store student points: %w", err)
	}
	return nil
}

func (s *SummarySrvc) SetTeamPoints(ctx context.Context, teamID uuid.UUID, dto points.MapDTO) error {
	m, err := s.checkedPointMap(ctx, dto)
	if err != nil {
		return err
	}
	err = s.repo.SetTeamPoints(ctx, teamID, m)
	if errors.Is(err, ErrNotFound) {
		return NewErrorTeamNotFound(teamID)
	}
	if err != nil {
		return fmt.Errorf("failed to store team points: %w", err)
	}
	return nil
}

func (s *SummarySrvc) checkedPointMap(ctx context.Context, dto points.MapDTO) (points.Map, error) {
	m, err := points.FromDTO(dto)
	if err != nil {
		return points.Map{}, NewErrorInvalidPoints([]srvcerror.FieldError{{Message: err.Error()}})
	}
	catalog, err := s.repo.GetCatalog(ctx)
	if err != nil {
		return points.Map{}, fmt.Errorf("failed to get catalog: %w", err)
	}
	if fields := checkPointKeys(catalog, m); len(fields) > 0 {
		return points.Map{}, NewErrorInvalidPoints(fields)
	}
	return m, nil
}

// checkPointKeys reports entries that do not address a catalog exercise or
// whose value does not fit the exercise.
func checkPointKeys(catalog summary.Catalog, m points.Map) []srvcerror.FieldError {
	exercises := map[string]points.Exercise{}
	for _, sheet := range catalog.Sheets {
		for _, e := range sheet.Exercises {
			exercises[points.Key(sheet.ID, e.ID)] = e
		}
	}
	for _, exam := range catalog.Exams {
		for _, e := range exam.Exercises {
			exercises[points.Key(exam.ID, e.ID)] = e
		}
	}

	var fields []srvcerror.FieldError
	report := func(key, msg string) {
		fields = append(fields, srvcerror.FieldError{Path: key, Message: msg})
	}
	for _, key := range m.Keys() {
		ex, ok := exercises[key]
		if !ok {
			report(key, "no such sheet or exam exercise")
			continue
		}
		containerID, exerciseID, _ := points.ParseKey(key)
		entry, _ := m.Entry(containerID, exerciseID)

		switch v := entry.Points.(type) {
		case points.ScalarPoints:
			if ex.HasSubexercises() {
				report(key, "exercise has subexercises, points must be an object")
			} else if v < 0 {
				report(key, "points must not be negative")
			}
		case points.SubPoints:
			if !ex.HasSubexercises() {
				report(key, "exercise has no subexercises, points must be a number")
				continue
			}
			known := map[string]bool{}
			for _, sub := range ex.Subexercises() {
				known[sub.ID] = true
			}
			for subID, p := range v {
				if !known[subID] {
					report(key+"."+subID, "no such subexercise")
				} else if p < 0 {
					report(key+"."+subID, "points must not be negative")
				}
			}
		}
	}
	return fields
}

// ImportCourse replaces the stored course with the given one. Criteria
// payloads are normalized before they are stored.
func (s *SummarySrvc) ImportCourse(ctx context.Context, catalog summary.Catalog, rosters []summary.Roster, configs []criteria.Config) error {
	for _, sheet := range catalog.Sheets {
		if err := points.ValidateContainer(sheet); err != nil {
			return srvcerror.ErrInvalidRequest(fmt.Sprintf("sheet %s: %v", sheet.ID, err))
		}
	}
	for _, exam := range catalog.Exams {
		if err := points.ValidateContainer(exam); err != nil {
			return srvcerror.ErrInvalidRequest(fmt.Sprintf("exam %s: %v", exam.ID, err))
		}
	}

	normalized := make([]criteria.Config, 0, len(configs))
	for _, cfg := range configs {
		c, err := s.registry.Parse(cfg)
		if errors.Is(err, criteria.ErrUnknownCriteria) {
			return NewErrorUnknownCriteria(cfg.Identifier)
		}
		var verr *criteria.ValidationError
		if errors.As(err, &verr) {
			return NewErrorCriteriaInvalid(verr.Fields).SetDebug(err)
		}
		if err != nil {
			return err
		}
		payload, err := criteria.Normalize(c)
		if err != nil {
			return err
		}
		cfg.Payload = payload
		normalized = append(normalized, cfg)
	}

	if err := s.repo.ImportCourse(ctx, catalog, rosters, normalized); err != nil {
		return fmt.Errorf("failed to import course: %w", err)
	}

	students := 0
	for _, r := range rosters {
		students += len(r.Students)
	}
	logger.FromContext(ctx).Info("imported course",
		"sheets", len(catalog.Sheets),
		"exams", len(catalog.Exams),
		"tutorials", len(rosters),
		"students", students,
		"criteria", len(normalized))
	return nil
}
