package points

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const keySeparator = "::"

// Value is either ScalarPoints or SubPoints and must mirror the shape of
// the exercise it belongs to.
type Value interface {
	isValue()
}

type ScalarPoints float64

// SubPoints maps subexercise ids to achieved points.
type SubPoints map[string]float64

func (ScalarPoints) isValue() {}
func (SubPoints) isValue()    {}

type Entry struct {
	Comment string
	Points  Value
}

func Key(containerID, exerciseID string) string {
	return containerID + keySeparator + exerciseID
}

func ParseKey(key string) (containerID string, exerciseID string, err error) {
	containerID, exerciseID, found := strings.Cut(key, keySeparator)
	if !found || containerID == "" || exerciseID == "" || strings.Contains(exerciseID, keySeparator) {
		return "", "", fmt.Errorf("malformed point key %q", key)
	}
	return containerID, exerciseID, nil
}

// Map holds achieved points of one student or one team keyed by
// sheet/exam and exercise. The zero value is an empty map.
type Map struct {
	entries map[string]Entry
}

func NewMap() Map {
	return Map{entries: map[string]Entry{}}
}

func (m Map) Len() int {
	return len(m.entries)
}

// Keys returns all keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Map) Entry(containerID, exerciseID string) (Entry, bool) {
	e, ok := m.entries[Key(containerID, exerciseID)]
	return e, ok
}

func (m *Map) SetEntry(containerID, exerciseID string, entry Entry) {
	m.setByKey(Key(containerID, exerciseID), entry)
}

func (m *Map) setByKey(key string, entry Entry) {
	if m.entries == nil {
		m.entries = map[string]Entry{}
	}
	m.entries[key] = cloneEntry(entry)
}

// Points returns the achieved points for one exercise. Missing entries and
// entries whose shape no longer matches the exercise count as 0.
func (m Map) Points(containerID string, e Exercise) float64 {
	entry, ok := m.Entry(containerID, e.ID)
	if !ok {
		return 0
	}

	switch body := e.Body.(type) {
	case Scalar:
		if v, ok := entry.Points.(ScalarPoints); ok {
			return float64(v)
		}
		return 0
	case Composite:
		subs, ok := entry.Points.(SubPoints)
		if !ok {
			return 0
		}
		sum := 0.0
		for _, sub := range body.Subexercises {
			sum += subs[sub.ID]
		}
		return sum
	default:
		return 0
	}
}

func (m Map) SumOfPoints(c Container) float64 {
	sum := 0.0
	for _, e := range c.ExerciseList() {
		sum += m.Points(c.ContainerID(), e)
	}
	return sum
}

// Merge copies every entry of other into m, replacing whole entries.
func (m *Map) Merge(other Map) {
	for key, entry := range other.entries {
		m.setByKey(key, entry)
	}
}

func (m Map) Clone() Map {
	res := Map{entries: make(map[string]Entry, len(m.entries))}
	for key, entry := range m.entries {
		res.entries[key] = cloneEntry(entry)
	}
	return res
}

// cloneEntry copies sub points and stores a missing value as 0.
func cloneEntry(e Entry) Entry {
	switch p := e.Points.(type) {
	case nil:
		e.Points = ScalarPoints(0)
	case SubPoints:
		cp := make(SubPoints, len(p))
		for k, v := range p {
			cp[k] = v
		}
		e.Points = cp
	}
	return e
}

// Resolve builds the effective point map of a team member: team entries
// apply unless the student has an individual entry for the same key.
func Resolve(team Map, student Map) Map {
	res := team.Clone()
	res.Merge(student)
	return res
}

// EntryDTO is the persisted form of an entry. Points is a JSON number or an
// object of subexercise id to number.
type EntryDTO struct {
	Comment string          `json:"comment"`
	Points  json.RawMessage `json:"points"`
}

type MapDTO map[string]EntryDTO

func decodeValue(raw json.RawMessage) (Value, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ScalarPoints(0), nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var subs map[string]float64
		if err := json.Unmarshal(raw, &subs); err != nil {
			return nil, fmt.Errorf("subexercise points must be numbers: %w", err)
		}
		return SubPoints(subs), nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("points must be a number or an object: %w", err)
	}
	return ScalarPoints(v), nil
}

func encodeValue(v Value) (json.RawMessage, error) {
	switch p := v.(type) {
	case ScalarPoints:
		return json.Marshal(float64(p))
	case SubPoints:
		return json.Marshal(map[string]float64(p))
	default:
		return nil, fmt.Errorf("unsupported point value %T", v)
	}
}

// FromDTO checks keys and point shapes once so that evaluation code can
// switch on Value without re-validating.
func FromDTO(dto MapDTO) (Map, error) {
	res := NewMap()
	for key, e := range dto {
		if _, _, err := ParseKey(key); err != nil {
			return Map{}, err
		}
		v, err := decodeValue(e.Points)
		if err != nil {
			return Map{}, fmt.Errorf("entry %s: %w", key, err)
		}
		res.entries[key] = Entry{Comment: e.Comment, Points: v}
	}
	return res, nil
}

func (m Map) ToDTO() (MapDTO, error) {
	dto := make(MapDTO, len(m.entries))
	for key, e := range m.entries {
		raw, err := encodeValue(e.Points)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", key, err)
		}
		dto[key] = EntryDTO{Comment: e.Comment, Points: raw}
	}
	return dto, nil
}

func (m Map) MarshalJSON() ([]byte, error) {
	dto, err := m.ToDTO()
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	var dto MapDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	res, err := FromDTO(dto)
	if err != nil {
		return err
	}
	*m = res
	return nil
}
