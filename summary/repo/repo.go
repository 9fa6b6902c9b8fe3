package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/summary"
	"github.com/programme-lv/schein/summary/srvc"
)

type summaryPgRepo struct {
	pool *pgxpool.Pool
}

var _ srvc.SummaryRepo = (*summaryPgRepo)(nil)

func NewSummaryPgRepo(pool *pgxpool.Pool) *summaryPgRepo {
	return &summaryPgRepo{pool: pool}
}

func (r *summaryPgRepo) GetCatalog(ctx context.Context) (summary.Catalog, error) {
	var catalog summary.Catalog

	sheetRows, err := r.pool.Query(ctx, `
		SELECT id, sheet_no, bonus, exercises
		FROM sheets
		ORDER BY sheet_no, id
	`)
	if err != nil {
		return catalog, fmt.Errorf("failed to load sheets: %w", err)
	}
	for sheetRows.Next() {
		var sheet points.Sheet
		var exercises []byte
		if err := sheetRows.Scan(&sheet.ID, &sheet.SheetNo, &sheet.Bonus, &exercises); err != nil {
			sheetRows.Close()
			return catalog, fmt.Errorf("failed to load sheet: %w", err)
		}
		if sheet.Exercises, err = decodeExercises(exercises); err != nil {
			sheetRows.Close()
			return catalog, fmt.Errorf("sheet %s: %w", sheet.ID, err)
		}
		catalog.Sheets = append(catalog.Sheets, sheet)
	}
	sheetRows.Close()
	if err := sheetRows.Err(); err != nil {
		return catalog, fmt.Errorf("failed to load sheets: %w", err)
	}

	examRows, err := r.pool.Query(ctx, `
		SELECT id, exam_no, percentage_needed, exercises
		FROM exams
		ORDER BY exam_no, id
	`)
	if err != nil {
		return catalog, fmt.Errorf("failed to load exams: %w", err)
	}
	for examRows.Next() {
		var exam points.Exam
		var exercises []byte
		if err := examRows.Scan(&exam.ID, &exam.ExamNo, &exam.PercentageNeeded, &exercises); err != nil {
			examRows.Close()
			return catalog, fmt.Errorf("failed to load exam: %w", err)
		}
		if exam.Exercises, err = decodeExercises(exercises); err != nil {
			examRows.Close()
			return catalog, fmt.Errorf("exam %s: %w", exam.ID, err)
		}
		catalog.Exams = append(catalog.Exams, exam)
	}
	examRows.Close()
	if err := examRows.Err(); err != nil {
		return catalog, fmt.Errorf("failed to load exams: %w", err)
	}

	return catalog, nil
}

func decodeExercises(raw []byte) ([]points.Exercise, error) {
	var dtos []points.ExerciseDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("failed to decode exercises: %w", err)
	}
	return points.ExercisesFromDTO(dtos), nil
}

const studentColumns = `id, tutorial_id, team_id, firstname, lastname, matriculation_no, points, presentation_points, attendances`

func scanStudent(row pgx.Row) (summary.Student, error) {
	var s summary.Student
	var pointsJSON, presentationsJSON, attendancesJSON []byte
	err := row.Scan(
		&s.ID,
		&s.TutorialID,
		&s.TeamID,
		&s.FirstName,
		&s.LastName,
		&s.MatriculationNo,
		&pointsJSON,
		&presentationsJSON,
		&attendancesJSON,
	)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(pointsJSON, &s.Points); err != nil {
		return s, fmt.Errorf("student %s points: %w", s.ID, err)
	}
	if err := json.Unmarshal(presentationsJSON, &s.PresentationPoints); err != nil {
		return s, fmt.Errorf("student %s presentations: %w", s.ID, err)
	}
	if err := json.Unmarshal(attendancesJSON, &s.Attendances); err != nil {
		return s, fmt.Errorf("student %s attendances: %w", s.ID, err)
	}
	return s, nil
}

func scanTeam(row pgx.Row) (summary.Team, error) {
	var t summary.Team
	var pointsJSON []byte
	if err := row.Scan(&t.ID, &t.TutorialID, &t.TeamNo, &pointsJSON); err != nil {
		return t, err
	}
	if err := json.Unmarshal(pointsJSON, &t.Points); err != nil {
		return t, fmt.Errorf("team %s points: %w", t.ID, err)
	}
	return t, nil
}

func (r *summaryPgRepo) GetStudent(ctx context.Context, id uuid.UUID) (summary.Student, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, fmt.Errorf("student %s: %w", id, srvc.ErrNotFound)
	}
	if err != nil {
		return s, fmt.Errorf("failed to load student: %w", err)
	}
	return s, nil
}

func (r *summaryPgRepo) GetTeam(ctx context.Context, id uuid.UUID) (summary.Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, tutorial_id, team_no, points FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, fmt.Errorf("team %s: %w", id, srvc.ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("failed to load team: %w", err)
	}
	return t, nil
}

func (r *summaryPgRepo) GetTutorial(ctx context.Context, id uuid.UUID) (summary.Tutorial, error) {
	var t summary.Tutorial
	err := r.pool.QueryRow(ctx, `SELECT id, slot, dates FROM tutorials WHERE id = $1`, id).
		Scan(&t.ID, &t.Slot, &t.Dates)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, fmt.Errorf("tutorial %s: %w", id, srvc.ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("failed to load tutorial: %w", err)
	}
	return t, nil
}

func (r *summaryPgRepo) GetRoster(ctx context.Context, tutorialID uuid.UUID) (summary.Roster, error) {
	var roster summary.Roster
	tutorial, err := r.GetTutorial(ctx, tutorialID)
	if err != nil {
		return roster, err
	}
	roster.Tutorial = tutorial

	studentRows, err := r.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE tutorial_id = $1
		ORDER BY lastname, firstname, id
	`, tutorialID)
	if err != nil {
		return roster, fmt.Errorf("failed to load students: %w", err)
	}
	for studentRows.Next() {
		s, err := scanStudent(studentRows)
		if err != nil {
			studentRows.Close()
			return roster, fmt.Errorf("failed to load student: %w", err)
		}
		roster.Students = append(roster.Students, s)
	}
	studentRows.Close()
	if err := studentRows.Err(); err != nil {
		return roster, fmt.Errorf("failed to load students: %w", err)
	}

	teamRows, err := r.pool.Query(ctx, `
		SELECT id, tutorial_id, team_no, points
		FROM teams
		WHERE tutorial_id = $1
		ORDER BY team_no
	`, tutorialID)
	if err != nil {
		return roster, fmt.Errorf("failed to load teams: %w", err)
	}
	for teamRows.Next() {
		t, err := scanTeam(teamRows)
		if err != nil {
			teamRows.Close()
			return roster, fmt.Errorf("failed to load team: %w", err)
		}
		roster.Teams = append(roster.Teams, t)
	}
	teamRows.Close()
	if err := teamRows.Err(); err != nil {
		return roster, fmt.Errorf("failed to load teams: %w", err)
	}

	return roster, nil
}

func (r *summaryPgRepo) ListCriteria(ctx context.Context) ([]criteria.Config, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, identifier, name, payload
		FROM criteria
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}
	defer rows.Close()

	var res []criteria.Config
	for rows.Next() {
		var cfg criteria.Config
		var payload []byte
		if err := rows.Scan(&cfg.ID, &cfg.Identifier, &cfg.Name, &payload); err != nil {
			return nil, fmt.Errorf("failed to load criteria row: %w", err)
		}
		cfg.Payload = json.RawMessage(payload)
		res = append(res, cfg)
	}
	return res, rows.Err()
}

func (r *summaryPgRepo) CreateCriteria(ctx context.Context, cfg criteria.Config) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO criteria (id, identifier, name, payload)
		VALUES ($1, $2, $3, $4)
	`, cfg.ID, string(cfg.Identifier), cfg.Name, []byte(cfg.Payload))
	if err != nil {
		return fmt.Errorf("failed to insert criteria: %w", err)
	}
	return nil
}

func (r *summaryPgRepo) SetStudentPoints(ctx context.Context, id uuid.UUID, m points.Map) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE students SET points = $2 WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update student points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student %s: %w", id, srvc.ErrNotFound)
	}
	return nil
}

func (r *summaryPgRepo) SetTeamPoints(ctx context.Context, id uuid.UUID, m points.Map) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE teams SET points = $2 WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update team points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %s: %w", id, srvc.ErrNotFound)
	}
	return nil
}

// ImportCourse replaces all course data in a single transaction.
func (r *summaryPgRepo) ImportCourse(ctx context.Context, catalog summary.Catalog, rosters []summary.Roster, configs []criteria.Config) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE criteria, students, teams, tutorials, exams, sheets`); err != nil {
		return fmt.Errorf("failed to clear course: %w", err)
	}

	for _, sheet := range catalog.Sheets {
		exercises, err := json.Marshal(points.ExercisesToDTO(sheet.Exercises))
		if err != nil {
			return fmt.Errorf("failed to encode sheet %s: %w", sheet.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO sheets (id, sheet_no, bonus, exercises) VALUES ($1, $2, $3, $4)
		`, sheet.ID, sheet.SheetNo, sheet.Bonus, exercises)
		if err != nil {
			return fmt.Errorf("failed to insert sheet %s: %w", sheet.ID, err)
		}
	}

	for _, exam := range catalog.Exams {
		exercises, err := json.Marshal(points.ExercisesToDTO(exam.Exercises))
		if err != nil {
			return fmt.Errorf("failed to encode exam %s: %w", exam.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO exams (id, exam_no, percentage_needed, exercises) VALUES ($1, $2, $3, $4)
		`, exam.ID, exam.ExamNo, exam.PercentageNeeded, exercises)
		if err != nil {
			return fmt.Errorf("failed to insert exam %s: %w", exam.ID, err)
		}
	}

	for _, roster := range rosters {
		if err := insertRoster(ctx, tx, roster); err != nil {
			return err
		}
	}

	for _, cfg := range configs {
		_, err := tx.Exec(ctx, `
			INSERT INTO criteria (id, identifier, name, payload, created_at) VALUES ($1, $2, $3, $4, $5)
		`, cfg.ID, string(cfg.Identifier), cfg.Name, []byte(cfg.Payload), time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert criteria %s: %w", cfg.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func insertRoster(ctx context.Context, tx pgx.Tx, roster summary.Roster) error {
	t := roster.Tutorial
	dates := t.Dates
	if dates == nil {
		dates = []time.Time{}
	}
	_, err := tx.Exec(ctx, `INSERT INTO tutorials (id, slot, dates) VALUES ($1, $2, $3)`, t.ID, t.Slot, dates)
	if err != nil {
		return fmt.Errorf("failed to insert tutorial %s: %w", t.ID, err)
	}

	for _, team := range roster.Teams {
		raw, err := json.Marshal(team.Points)
		if err != nil {
			return fmt.Errorf("failed to encode team %s points: %w", team.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO teams (id, tutorial_id, team_no, points) VALUES ($1, $2, $3, $4)
		`, team.ID, t.ID, team.TeamNo, raw)
		if err != nil {
			return fmt.Errorf("failed to insert team %s: %w", team.ID, err)
		}
	}

	for _, s := range roster.Students {
		pointsJSON, err := json.Marshal(s.Points)
		if err != nil {
			return fmt.Errorf("failed to encode student %s points: %w", s.ID, err)
		}
		presentations, err := json.Marshal(nonNilMap(s.PresentationPoints))
		if err != nil {
			return err
		}
		attendances, err := json.Marshal(nonNilMap(s.Attendances))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO students (`+studentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, s.ID, t.ID, s.TeamID, s.FirstName, s.LastName, s.MatriculationNo, pointsJSON, presentations, attendances)
		if err != nil {
			return fmt.Errorf("failed to insert student %s: %w", s.ID, err)
		}
	}
	return nil
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
