package signature

// RangeInclusion tells whether the end of a range belongs to it.
type RangeInclusion int

const (
	Inclusive RangeInclusion = iota
	RightExclusive
)

// BoundKind describes the end of a range.
type BoundKind int

const (
	Included BoundKind = iota
	Excluded
	Unbounded
)

// Bound is the end of a range. Value is meaningless for Unbounded.
type Bound[T int64 | float64] struct {
	Kind  BoundKind
	Value T
}

// IntRangeValue is an integer-stepped range.
type IntRangeValue struct {
	Start int64
	Step  int64
	End   Bound[int64]
}

// FloatRangeValue is a float-stepped range.
type FloatRangeValue struct {
	Start float64
	Step  float64
	End   Bound[float64]
}

func (IntRangeValue) Type() Type   { return TypeRange }
func (FloatRangeValue) Type() Type { return TypeRange }
func (IntRangeValue) isValue()     {}
func (FloatRangeValue) isValue()   {}

// NewIntRange builds an integer range. start and step are int values; end is
// an int value, or nothing for an open range, in which case incl is ignored.
func NewIntRange(start, step, end Value, incl RangeInclusion) Value {
	r := IntRangeValue{Start: asInt(start), Step: asInt(step)}
	switch e := end.(type) {
	case IntValue:
		r.End = Bound[int64]{Kind: boundKind(incl), Value: e.Val}
	default:
		r.End = Bound[int64]{Kind: Unbounded}
	}
	return r
}

// NewFloatRange builds a float range; int arguments are widened.
func NewFloatRange(start, step, end Value, incl RangeInclusion) Value {
	r := FloatRangeValue{Start: asFloat(start), Step: asFloat(step)}
	switch end.(type) {
	case FloatValue, IntValue:
		r.End = Bound[float64]{Kind: boundKind(incl), Value: asFloat(end)}
	default:
		r.End = Bound[float64]{Kind: Unbounded}
	}
	return r
}

func boundKind(incl RangeInclusion) BoundKind {
	if incl == RightExclusive {
		return Excluded
	}
	return Included
}

func asInt(v Value) int64 {
	if i, ok := v.(IntValue); ok {
		return i.Val
	}
	return 0
}

func asFloat(v Value) float64 {
	switch n := v.(type) {
	case FloatValue:
		return n.Val
	case IntValue:
		return float64(n.Val)
	}
	return 0
}
