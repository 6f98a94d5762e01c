package interp

import "fmt"

// Kind distinguishes the two activation record kinds spec §3 allows.
type Kind int

const (
	ProgramFrame Kind = iota
	ProcedureFrame
)

func (k Kind) String() string {
	if k == ProcedureFrame {
		return "PROCEDURE"
	}
	return "PROGRAM"
}

// Number is the tagged runtime scalar: Integer(i) | Real(f), per spec
// §9 design note on numeric values. Zero value is Integer(0), which is
// also the "unassigned variable" reading (spec §9 decision 2).
type Number struct {
	i      int64
	f      float64
	isReal bool
}

// Int builds an integer Number.
func Int(v int64) Number { return Number{i: v} }

// Real builds a real Number.
func Real(v float64) Number { return Number{f: v, isReal: true} }

// IsReal reports whether the value is a REAL rather than an INTEGER.
func (n Number) IsReal() bool { return n.isReal }

// AsFloat widens the value to float64 regardless of its tag.
func (n Number) AsFloat() float64 {
	if n.isReal {
		return n.f
	}
	return float64(n.i)
}

// AsInt narrows the value to int64 regardless of its tag, truncating a
// REAL toward zero.
func (n Number) AsInt() int64 {
	if n.isReal {
		return int64(n.f)
	}
	return n.i
}

func (n Number) String() string {
	if n.isReal {
		return fmt.Sprintf("%g", n.f)
	}
	return fmt.Sprintf("%d", n.i)
}

// ActivationRecord is a single runtime frame: a name, a kind, a nesting
// level, and its local bindings. Frames own their member map
// exclusively (spec §9 design note on the call stack).
type ActivationRecord struct {
	Name         string
	Kind         Kind
	NestingLevel int
	members      map[string]Number
	order        []string // insertion order, diagnostics only
}

// NewActivationRecord creates an empty frame.
func NewActivationRecord(name string, kind Kind, nestingLevel int) *ActivationRecord {
	return &ActivationRecord{
		Name:         name,
		Kind:         kind,
		NestingLevel: nestingLevel,
		members:      make(map[string]Number),
	}
}

// Set stores value under name, overwriting any previous binding.
func (r *ActivationRecord) Set(name string, value Number) {
	if _, exists := r.members[name]; !exists {
		r.order = append(r.order, name)
	}
	r.members[name] = value
}

// Get returns the binding for name, or (zero Number, false) if the
// frame has no binding for it yet. The interpreter implements the
// "unassigned variable reads the zero value" rule (spec §9 decision 2)
// by returning Int(0) when the second return value is false.
func (r *ActivationRecord) Get(name string) (Number, bool) {
	v, ok := r.members[name]
	return v, ok
}

func (r *ActivationRecord) String() string {
	out := fmt.Sprintf("%s (%s, level %d)", r.Name, r.Kind, r.NestingLevel)
	for _, name := range r.order {
		out += fmt.Sprintf("\n  %s: %s", name, r.members[name])
	}
	return out
}
