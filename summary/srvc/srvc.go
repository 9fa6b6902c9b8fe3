package srvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/points"
	"github.com/programme-lv/schein/summary"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

type SummarySrvcClient interface {
	GetStudentSummary(ctx context.Context, studentID uuid.UUID) (summary.Summary, error)
	GetTutorialSummaries(ctx context.Context, tutorialID uuid.UUID) (map[uuid.UUID]summary.Summary, error)
	ArchiveTutorialSummaries(ctx context.Context, tutorialID uuid.UUID) (Archive, error)

	ListCriteriaKinds(ctx context.Context) ([]CriteriaKind, error)
	ValidateCriteria(ctx context.Context, kind criteria.Kind, payload json.RawMessage) (json.RawMessage, error)
	CreateCriteria(ctx context.Context, name string, kind criteria.Kind, payload json.RawMessage) (criteria.Config, error)
	ListCriteria(ctx context.Context) ([]criteria.Config, error)

	SetStudentPoints(ctx context.Context, studentID uuid.UUID, dto points.MapDTO) error
	SetTeamPoints(ctx context.Context, teamID uuid.UUID, dto points.MapDTO) error

	ImportCourse(ctx context.Context, catalog summary.Catalog, rosters []summary.Roster, configs []criteria.Config) error
}

type SummaryRepo interface {
	GetCatalog(ctx context.Context) (summary.Catalog, error)
	GetStudent(ctx context.Context, id uuid.UUID) (summary.Student, error)
	GetTeam(ctx context.Context, id uuid.UUID) (summary.Team, error)
	GetTutorial(ctx context.Context, id uuid.UUID) (summary.Tutorial, error)
	GetRoster(ctx context.Context, tutorialID uuid.UUID) (summary.Roster, error)

	ListCriteria(ctx context.Context) ([]criteria.Config, error)
	CreateCriteria(ctx context.Context, cfg criteria.Config) error

	SetStudentPoints(ctx context.Context, id uuid.UUID, m points.Map) error
	SetTeamPoints(ctx context.Context, id uuid.UUID, m points.Map) error

	ImportCourse(ctx context.Context, catalog summary.Catalog, rosters []summary.Roster, configs []criteria.Config) error
}

type S3BucketFacade interface {
	Upload(ctx context.Context, content []byte, key string, mediaType string) (string, error)
}

// CriteriaKind is a registered kind together with its default payload.
type CriteriaKind struct {
	Identifier     criteria.Kind   `json:"identifier"`
	Name           string          `json:"name"`
	DefaultPayload json.RawMessage `json:"defaultPayload"`
}

type SummarySrvc struct {
	repo     SummaryRepo
	archive  S3BucketFacade // nil disables archiving
	registry *criteria.Registry
	builder  *summary.Builder
	now      func() time.Time
}

var _ SummarySrvcClient = (*SummarySrvc)(nil)

func NewSummarySrvc(repo SummaryRepo, archive S3BucketFacade, registry *criteria.Registry, opts ...summary.Option) *SummarySrvc {
	return &SummarySrvc{
		repo:     repo,
		archive:  archive,
		registry: registry,
		builder:  summary.NewBuilder(registry, opts...),
		now:      time.Now,
	}
}
