package span

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DisplayLayout is the wall-clock layout used by FormatIn and String.
const DisplayLayout = "15:04 02.01.2006"

// record is the {start, end} shape used by the JSON and YAML encodings.
type record struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{Start: s.start, End: s.end})
}

// UnmarshalJSON decodes {"start":..,"end":..} and rejects inverted bounds.
func (s *Span) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	v, err := New(r.Start, r.End)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Span) MarshalYAML() (any, error) {
	return record{Start: s.start, End: s.end}, nil
}

func (s *Span) UnmarshalYAML(node *yaml.Node) error {
	var r record
	if err := node.Decode(&r); err != nil {
		return err
	}
	v, err := New(r.Start, r.End)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = v
	return nil
}

// FormatIn renders both bounds as wall-clock time in loc.
func (s Span) FormatIn(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("%s -> %s",
		time.Unix(s.start, 0).In(loc).Format(DisplayLayout),
		time.Unix(s.end, 0).In(loc).Format(DisplayLayout),
	)
}

func (s Span) String() string {
	return s.FormatIn(time.Local)
}
