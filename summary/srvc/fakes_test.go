package srvc_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/summary"
	"github.com/programme-lv/schein/summary/srvc"
)

type memRepo struct {
	mu        sync.Mutex
	catalog   summary.Catalog
	tutorials map[uuid.UUID]summary.Tutorial
	students  map[uuid.UUID]summary.Student
	teams     map[uuid.UUID]summary.Team
	criteria  []criteria.Config
}

func newMemRepo() *memRepo {
	return &memRepo{
		tutorials: map[uuid.UUID]summary.Tutorial{},
		students:  map[uuid.UUID]summary.Student{},
		teams:     map[uuid.UUID]summary.Team{},
	}
}

func (r *memRepo) GetCatalog(ctx context.Context) (summary.Catalog, error) {
	return r.catalog, nil
}

func (r *memRepo) GetStudent(ctx context.Context, id uuid.UUID) (summary.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return summary.Student{}, srvc.ErrNotFound
	}
	return s, nil
}

func (r *memRepo) GetTeam(ctx context.Context, id uuid.UUID) (summary.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return summary.Team{}, srvc.ErrNotFound
	}
	return t, nil
}

func (r *memRepo) GetTutorial(ctx context.Context, id uuid.UUID) (summary.Tutorial, error) {
	t, ok := r.tutorials[id]
	if !ok {
		return summary.Tutorial{}, srvc.ErrNotFound
	}
	return t, nil
}

func (r *memRepo) GetRoster(ctx context.Context, tutorialID uuid.UUID) (summary.Roster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tutorials[tutorialID]
	if !ok {
		return summary.Roster{}, srvc.ErrNotFound
	}
	roster := summary.Roster{Tutorial: t}
	for _, s := range r.students {
		if s.TutorialID == tutorialID {
			roster.Students = append(roster.Students, s)
		}
	}
	for _, tm := range r.teams {
		if tm.TutorialID == tutorialID {
			roster.Teams = append(roster.Teams, tm)
		}
	}
	return roster, nil
}

func (r *memRepo) ListCriteria(ctx context.Context) ([]criteria.Config, error) {
	return r.criteria, nil
}

func (r *memRepo) CreateCriteria(ctx context.Context, cfg criteria.Config) error {
	r.criteria = append(r.criteria, cfg)
	return nil
}

func (r *memRepo) SetStudentPoints(ctx context.Context, id uuid.UUID, m points.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return srvc.ErrNotFound
	}
	s.Points = m
	r.students[id] = s
	return nil
}

func (r *memRepo) SetTeamPoints(ctx context.Context, id uuid.UUID, m points.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return srvc.ErrNotFound
	}
	t.Points = m
	r.teams[id] = t
	return nil
}

func (r *memRepo) ImportCourse(ctx context.Context, catalog summary.Catalog, rosters []summary.Roster, configs []criteria.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = catalog
	r.criteria = configs
	for _, roster := range rosters {
		r.tutorials[roster.Tutorial.ID] = roster.Tutorial
		for _, s := range roster.Students {
			r.students[s.ID] = s
		}
		for _, t := range roster.Teams {
			r.teams[t.ID] = t
		}
	}
	return nil
}

type upload struct {
	key       string
	mediaType string
	content   []byte
}

type memBucket struct {
	uploads []upload
}

func (b *memBucket) Upload(ctx context.Context, content []byte, key string, mediaType string) (string, error) {
	b.uploads = append(b.uploads, upload{key: key, mediaType: mediaType, content: content})
	return "https://bucket.example/" + key, nil
}
