package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Fields that can be filtered on. Content is never filterable.
var filterable = map[string]bool{"source": true, "category": true, "title": true}

// Expression is a metadata filter with must/should/must_not boolean semantics.
// The zero value matches everything.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	for name, group := range map[string][]Condition{"must": must, "should": should, "must_not": mustNot} {
		if len(group) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many %s conditions (max %d)", name, MaxConditionsPerGroup)
		}
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// BySource is the common delete/find-by-source filter.
func BySource(source string) (Expression, error) {
	c, err := NewMatch("source", source)
	if err != nil {
		return Expression{}, err
	}
	return NewExpression([]Condition{c}, nil, nil)
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Matches evaluates the expression against flat metadata fields.
func (e Expression) Matches(fields map[string]string) bool {
	for _, c := range e.must {
		if fields[c.key] != c.match {
			return false
		}
	}
	for _, c := range e.mustNot {
		if fields[c.key] == c.match {
			return false
		}
	}
	if len(e.should) == 0 {
		return true
	}
	for _, c := range e.should {
		if fields[c.key] == c.match {
			return true
		}
	}
	return false
}

// Condition is an exact tag match on one metadata field.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if !filterable[key] {
		return Condition{}, fmt.Errorf("field %q is not filterable", key)
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
