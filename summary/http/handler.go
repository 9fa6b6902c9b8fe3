package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/programme-lv/schein/httpjson"
	"github.com/programme-lv/schein/logger"
	"github.com/programme-lv/schein/srvcerror"
	"github.com/programme-lv/schein/summary/srvc"
	"golang.org/x/sync/singleflight"
)

type SummaryHttpHandler struct {
	summarySrvc srvc.SummarySrvcClient
	cache       *cache.Cache
	sfGroup     singleflight.Group

	genMu sync.Mutex
	gen   uint64 // bumped by every write
}

// NewSummaryHttpHandler caches computed summaries for ttl. Any write
// through this handler drops the cache.
func NewSummaryHttpHandler(summarySrvc srvc.SummarySrvcClient, ttl time.Duration) *SummaryHttpHandler {
	return &SummaryHttpHandler{
		summarySrvc: summarySrvc,
		cache:       cache.New(ttl, 2*ttl),
	}
}

func (h *SummaryHttpHandler) RegisterRoutes(r chi.Router) {
	r.Get("/criteria/kinds", h.ListCriteriaKinds)
	r.Post("/criteria/validate", h.ValidateCriteria)
	r.Get("/criteria", h.ListCriteria)
	r.Post("/criteria", h.CreateCriteria)

	r.Get("/students/{studentId}/summary", h.GetStudentSummary)
	r.Put("/students/{studentId}/points", h.SetStudentPoints)
	r.Put("/teams/{teamId}/points", h.SetTeamPoints)

	r.Get("/tutorials/{tutorialId}/summaries", h.GetTutorialSummaries)
	r.Post("/tutorials/{tutorialId}/summaries/archive", h.ArchiveTutorialSummaries)
}

func (h *SummaryHttpHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.HandleSrvcError(logger.FromContext(r.Context()), w, err)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, srvcerror.ErrInvalidRequest(fmt.Sprintf("'%s' is not a valid uuid", raw)).
			SetFields([]srvcerror.FieldError{{Path: name, Message: "must be a uuid"}})
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return srvcerror.ErrInvalidRequest("request body is not valid JSON").SetDebug(err)
	}
	return nil
}

// cached returns the value stored under key or computes it once for all
// concurrent callers. A value computed while a write happened is returned
// to its callers but never stored.
func (h *SummaryHttpHandler) cached(key string, load func() (any, error)) (any, error) {
	if v, found := h.cache.Get(key); found {
		return v, nil
	}
	gen := h.generation()
	v, err, _ := h.sfGroup.Do(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		if v, found := h.cache.Get(key); found {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		h.genMu.Lock()
		defer h.genMu.Unlock()
		if h.gen == gen {
			h.cache.SetDefault(key, v)
		}
		return v, nil
	})
	return v, err
}

func (h *SummaryHttpHandler) generation() uint64 {
	h.genMu.Lock()
	defer h.genMu.Unlock()
	return h.gen
}

// invalidate drops cached summaries. Loads already in flight keep their
// singleflight key, so later readers start a fresh load.
func (h *SummaryHttpHandler) invalidate() {
	h.genMu.Lock()
	defer h.genMu.Unlock()
	h.gen++
	h.cache.Flush()
}
