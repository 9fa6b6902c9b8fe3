package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/programme-lv/schein/srvcerror"
)

type JsonResponse struct {
	Status  string                 `json:"status"` // "success" or "error"
	Data    any                    `json:"data,omitempty"`
	ErrCode string                 `json:"code,omitempty"`
	ErrMsg  string                 `json:"message,omitempty"`
	Fields  []srvcerror.FieldError `json:"fields,omitempty"`
}

func writeJson(w http.ResponseWriter, statusCode int, resp JsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	writeJson(w, http.StatusOK, JsonResponse{
		Status: "success",
		Data:   data,
	})
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeJson(w, statusCode, JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	})
}

func writeInternalErrorJson(w http.ResponseWriter) {
	WriteErrorJson(w,
		http.StatusText(http.StatusInternalServerError),
		http.StatusInternalServerError,
		srvcerror.ErrCodeInternalServerError)
}

// HandleSrvcError writes err as a JSON error envelope. Service errors keep
// their code, status and field errors; anything else becomes a 500.
func HandleSrvcError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		logger.Error("internal server error", "error", err)
		writeInternalErrorJson(w)
		return
	}

	if srvcErr.DebugInfo() != nil {
		logger.Warn("service error", "error", err, "debug", srvcErr.DebugInfo())
	} else {
		logger.Warn("service error", "error", err)
	}
	if srvcErr.HttpStatusCode() == http.StatusInternalServerError {
		logger.Error("internal server error", "error", err)
	}
	writeJson(w, srvcErr.HttpStatusCode(), JsonResponse{
		Status:  "error",
		ErrMsg:  srvcErr.Error(),
		ErrCode: srvcErr.ErrorCode(),
		Fields:  srvcErr.Fields(),
	})
}
