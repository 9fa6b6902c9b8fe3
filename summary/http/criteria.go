package http

import (
	"encoding/json"
	"net/http"

	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/httpjson"
)

type CriteriaPayload struct {
	Identifier criteria.Kind   `json:"identifier"`
	Payload    json.RawMessage `json:"payload"`
}

type CreateCriteriaRequest struct {
	Name       string          `json:"name"`
	Identifier criteria.Kind   `json:"identifier"`
	Payload    json.RawMessage `json:"payload"`
}

func (h *SummaryHttpHandler) ListCriteriaKinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := h.summarySrvc.ListCriteriaKinds(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, kinds)
}

// ValidateCriteria answers with the normalized payload or a 400 listing
// the offending fields.
func (h *SummaryHttpHandler) ValidateCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaPayload
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	payload, err := h.summarySrvc.ValidateCriteria(r.Context(), req.Identifier, req.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, CriteriaPayload{Identifier: req.Identifier, Payload: payload})
}

func (h *SummaryHttpHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	configs, err := h.summarySrvc.ListCriteria(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if configs == nil {
		configs = []criteria.Config{}
	}
	httpjson.WriteSuccessJson(w, configs)
}

func (h *SummaryHttpHandler) CreateCriteria(w http.ResponseWriter, r *http.Request) {
	var req CreateCriteriaRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg, err := h.summarySrvc.CreateCriteria(r.Context(), req.Name, req.Identifier, req.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidate()
	httpjson.WriteSuccessJson(w, cfg)
}
