package srvc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/srvcerror"
)

const (
	ErrCodeStudentNotFound          = "student_not_found"
	ErrCodeTeamNotFound             = "team_not_found"
	ErrCodeTutorialNotFound         = "tutorial_not_found"
	ErrCodeUnknownCriteria          = "unknown_criteria"
	ErrCodeCriteriaInvalid          = "criteria_invalid"
	ErrCodeCriteriaEvaluationFailed = "criteria_evaluation_failed"
	ErrCodeInvalidPoints            = "invalid_points"
	ErrCodeArchiveDisabled          = "archive_disabled"
)

func NewErrorStudentNotFound(id fmt.Stringer) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeStudentNotFound,
		fmt.Sprintf("student '%s' not found", id),
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrorTeamNotFound(id fmt.Stringer) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeTeamNotFound,
		fmt.Sprintf("team '%s' not found", id),
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrorTutorialNotFound(id fmt.Stringer) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeTutorialNotFound,
		fmt.Sprintf("tutorial '%s' not found", id),
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrorUnknownCriteria(kind criteria.Kind) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUnknownCriteria,
		fmt.Sprintf("unknown criteria '%s'", kind),
	).SetHttpStatusCode(http.StatusBadRequest)
}

func NewErrorCriteriaInvalid(fields []criteria.FieldError) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeCriteriaInvalid,
		"criteria configuration is invalid",
	).SetHttpStatusCode(http.StatusBadRequest).SetFields(toSrvcFields(fields))
}

func NewErrorInvalidPoints(fields []srvcerror.FieldError) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidPoints,
		"point map is invalid",
	).SetHttpStatusCode(http.StatusBadRequest).SetFields(fields)
}

func NewErrorArchiveDisabled() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeArchiveDisabled,
		"summary archiving is not configured",
	).SetHttpStatusCode(http.StatusServiceUnavailable)
}

// evaluationError classifies a summary build failure. Broken stored
// configurations are reported with their field errors.
func evaluationError(err error) error {
	var verr *criteria.ValidationError
	switch {
	case errors.As(err, &verr):
		return srvcerror.New(
			ErrCodeCriteriaEvaluationFailed,
			fmt.Sprintf("stored %s criteria is invalid", verr.Kind),
		).SetHttpStatusCode(http.StatusConflict).SetFields(toSrvcFields(verr.Fields)).SetDebug(err)
	case errors.Is(err, criteria.ErrUnknownCriteria), errors.Is(err, criteria.ErrInvalidConfig):
		return srvcerror.New(
			ErrCodeCriteriaEvaluationFailed,
			"criteria could not be evaluated",
		).SetHttpStatusCode(http.StatusConflict).SetDebug(err)
	default:
		return err
	}
}

func toSrvcFields(fields []criteria.FieldError) []srvcerror.FieldError {
	res := make([]srvcerror.FieldError, 0, len(fields))
	for _, f := range fields {
		res = append(res, srvcerror.FieldError{Path: f.Path, Message: f.Message})
	}
	return res
}
