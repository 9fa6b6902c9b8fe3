package httpjson_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/programme-lv/schein/httpjson"
	"github.com/programme-lv/schein/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decode(t *testing.T, rec *httptest.ResponseRecorder) httpjson.JsonResponse {
	t.Helper()
	var resp httpjson.JsonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteSuccessJson(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.WriteSuccessJson(rec, map[string]bool{"passed": true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, map[string]any{"passed": true}, resp.Data)
}

func TestHandleSrvcErrorWithFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := srvcerror.ErrInvalidRequest("invalid criteria").
		SetFields([]srvcerror.FieldError{{Path: "valueNeeded", Message: "must be positive"}})
	httpjson.HandleSrvcError(discard, rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, srvcerror.ErrCodeInvalidRequest, resp.ErrCode)
	assert.Equal(t, []srvcerror.FieldError{{Path: "valueNeeded", Message: "must be positive"}}, resp.Fields)
}

func TestHandleSrvcErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.HandleSrvcError(discard, rec, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, srvcerror.ErrCodeInternalServerError, resp.ErrCode)
	assert.NotContains(t, resp.ErrMsg, "db down")
}
