package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/programme-lv/schein/httpjson"
	"github.com/programme-lv/schein/points"
)

const (
	studentSummaryCacheKeyPrefix  = "student_summary:"
	tutorialSummaryCacheKeyPrefix = "tutorial_summaries:"
)

func (h *SummaryHttpHandler) GetStudentSummary(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuidParam(r, "studentId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// shared by every singleflight waiter, not bound to this request
	ctx := context.WithoutCancel(r.Context())
	res, err := h.cached(studentSummaryCacheKeyPrefix+studentID.String(), func() (any, error) {
		return h.summarySrvc.GetStudentSummary(ctx, studentID)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, res)
}

func (h *SummaryHttpHandler) GetTutorialSummaries(w http.ResponseWriter, r *http.Request) {
	tutorialID, err := uuidParam(r, "tutorialId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	res, err := h.cached(tutorialSummaryCacheKeyPrefix+tutorialID.String(), func() (any, error) {
		return h.summarySrvc.GetTutorialSummaries(ctx, tutorialID)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, res)
}

func (h *SummaryHttpHandler) ArchiveTutorialSummaries(w http.ResponseWriter, r *http.Request) {
	tutorialID, err := uuidParam(r, "tutorialId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	archive, err := h.summarySrvc.ArchiveTutorialSummaries(r.Context(), tutorialID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, archive)
}

func (h *SummaryHttpHandler) SetStudentPoints(w http.ResponseWriter, r *http.Request) {
	h.setPoints(w, r, "studentId", h.summarySrvc.SetStudentPoints)
}

func (h *SummaryHttpHandler) SetTeamPoints(w http.ResponseWriter, r *http.Request) {
	h.setPoints(w, r, "teamId", h.summarySrvc.SetTeamPoints)
}

func (h *SummaryHttpHandler) setPoints(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	set func(ctx context.Context, id uuid.UUID, dto points.MapDTO) error,
) {
	id, err := uuidParam(r, param)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var dto points.MapDTO
	if err := decodeBody(r, &dto); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := set(r.Context(), id, dto); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidate()
	httpjson.WriteSuccessJson(w, dto)
}
