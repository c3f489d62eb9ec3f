package span

// Mutable is a span whose Merge and Offset update the receiver in place and
// return it. The read-only algebra is promoted from the embedded Span.
type Mutable struct {
	Span
}

// NewMutable returns a mutable span [start, end].
func NewMutable(start, end int64) (*Mutable, error) {
	s, err := New(start, end)
	if err != nil {
		return nil, err
	}
	return &Mutable{Span: s}, nil
}

// Merge widens m to cover every one of others. On error m is unchanged.
func (m *Mutable) Merge(others ...Reader) (*Mutable, error) {
	merged, err := m.Span.Merge(others...)
	if err != nil {
		return m, err
	}
	m.Span = merged
	return m, nil
}

// Extend widens m to cover other.
func (m *Mutable) Extend(other Reader) *Mutable {
	m.Span = m.Span.Extend(other)
	return m
}

// Offset shifts m by delta.
func (m *Mutable) Offset(delta int64) *Mutable {
	m.Span = m.Span.Offset(delta)
	return m
}

// Freeze returns an immutable copy of the current bounds.
func (m *Mutable) Freeze() Span {
	return m.Span
}
