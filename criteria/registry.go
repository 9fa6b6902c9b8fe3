package criteria

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Blueprint describes a criteria kind. New returns a pointer to a fresh
// prototype holding the default parameters; payloads are decoded on top of it.
type Blueprint struct {
	Kind             Kind
	Name             string
	New              func() Criteria
	StructValidation validator.StructLevelFunc // optional cross-field checks
}

// Registry maps kinds to blueprints. It is filled once at startup and only
// read afterwards.
type Registry struct {
	blueprints map[Kind]Blueprint
	validate   *validator.Validate
	translator ut.Translator
	frozen     bool
}

func NewRegistry() *Registry {
	validate, translator := newValidator()
	return &Registry{
		blueprints: map[Kind]Blueprint{},
		validate:   validate,
		translator: translator,
	}
}

// DefaultRegistry returns a frozen registry with all built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range builtinBlueprints() {
		if err := r.Register(b); err != nil {
			panic(fmt.Sprintf("registering built-in criteria %s: %v", b.Kind, err))
		}
	}
	r.Freeze()
	return r
}

func builtinBlueprints() []Blueprint {
	return []Blueprint{
		{
			Kind:             KindSheetTotal,
			Name:             "Total points over all sheets",
			New:              func() Criteria { return &SheetTotal{Percentage: true, ValueNeeded: 0.5} },
			StructValidation: sheetTotalStructValidation,
		},
		{
			Kind: KindSheetIndividual,
			Name: "Number of passed sheets",
			New: func() Criteria {
				return &SheetIndividual{Percentage: true, ValueNeeded: 0.6, PercentagePerSheet: true, ValuePerSheetNeeded: 0.5}
			},
			StructValidation: sheetIndividualStructValidation,
		},
		{
			Kind: KindScheinexam,
			Name: "Scheinexam",
			New:  func() Criteria { return &Scheinexam{PassAllExamsIndividually: true} },
		},
		{
			Kind: KindPresentation,
			Name: "Presentations",
			New:  func() Criteria { return &Presentation{PresentationsNeeded: 2} },
		},
		{
			Kind:             KindAttendance,
			Name:             "Tutorial attendance",
			New:              func() Criteria { return &Attendance{Percentage: true, ValueNeeded: 0.6} },
			StructValidation: attendanceStructValidation,
		},
	}
}

func (r *Registry) Register(b Blueprint) error {
	if r.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrRegistryFrozen, b.Kind)
	}
	if b.Kind == "" || b.New == nil {
		return fmt.Errorf("blueprint needs a kind and a constructor")
	}
	if _, exists := r.blueprints[b.Kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCriteria, b.Kind)
	}
	if b.StructValidation != nil {
		proto := reflect.Indirect(reflect.ValueOf(b.New())).Interface()
		r.validate.RegisterStructValidation(b.StructValidation, proto)
	}
	r.blueprints[b.Kind] = b
	return nil
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Lookup(kind Kind) (Blueprint, error) {
	b, ok := r.blueprints[kind]
	if !ok {
		return Blueprint{}, fmt.Errorf("%w: %s", ErrUnknownCriteria, kind)
	}
	return b, nil
}

// Kinds returns the registered blueprints sorted by kind.
func (r *Registry) Kinds() []Blueprint {
	res := make([]Blueprint, 0, len(r.blueprints))
	for _, b := range r.blueprints {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Kind < res[j].Kind })
	return res
}

// Validate decodes and checks payload for kind. User input problems are
// reported as field errors; the error result is reserved for unknown kinds.
func (r *Registry) Validate(kind Kind, payload json.RawMessage) (Criteria, []FieldError, error) {
	b, err := r.Lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	c := b.New()
	if fields := decodePayload(payload, c); len(fields) > 0 {
		return nil, fields, nil
	}
	if err := r.validate.Struct(c); err != nil {
		return nil, translateErrors(err, r.translator), nil
	}
	return c, nil, nil
}

// Parse turns a stored configuration into an evaluator. A configuration
// that does not validate is reported as *ValidationError.
func (r *Registry) Parse(cfg Config) (Criteria, error) {
	c, fields, err := r.Validate(cfg.Identifier, cfg.Payload)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Kind: cfg.Identifier, Fields: fields}
	}
	return c, nil
}

// Normalize returns the payload with defaults filled in.
func Normalize(c Criteria) (json.RawMessage, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode criteria %s: %w", c.Kind(), err)
	}
	return raw, nil
}
