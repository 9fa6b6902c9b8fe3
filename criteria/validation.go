package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes a single problem of a submitted payload.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError is returned when a stored configuration no longer passes
// validation. It matches ErrInvalidConfig with errors.Is.
type ValidationError struct {
	Kind   Kind
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Path+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

var (
	percentageTag  = "percentage"
	percentageText = "{0} must be between 0 and 1 when a percentage is used"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterTranslation(
		percentageTag, translator,
		func(t ut.Translator) error { return t.Add(percentageTag, percentageText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(percentageTag, fe.Field())
			return s
		},
	)
	return validate, translator
}

// reportPercentage flags value when it is used as a ratio but lies outside [0, 1].
func reportPercentage(sl validator.StructLevel, percentage bool, value float64, field, structField string) {
	if percentage && (value < 0 || value > 1) {
		sl.ReportError(value, field, structField, percentageTag, "")
	}
}

// decodePayload decodes payload on top of the prototype c. Decoding
// problems are returned as field errors, never as an error.
func decodePayload(payload []byte, c Criteria) []FieldError {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	err := dec.Decode(c)
	if err == nil {
		if _, err := dec.Token(); err != io.EOF {
			return []FieldError{{Message: "unexpected data after JSON payload"}}
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return []FieldError{{
			Path:    typeErr.Field,
			Message: fmt.Sprintf("must be of type %s, got %s", jsonTypeName(typeErr.Type), typeErr.Value),
		}}
	case errors.As(err, &syntaxErr):
		return []FieldError{{Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return []FieldError{{Path: field, Message: "unknown field"}}
	default:
		return []FieldError{{Message: err.Error()}}
	}
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return t.String()
	}
}

func translateErrors(err error, translator ut.Translator) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	res := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// drop the Go type name prefix, e.g. "SheetTotal.valueNeeded"
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		res = append(res, FieldError{Path: path, Message: fe.Translate(translator)})
	}
	return res
}
