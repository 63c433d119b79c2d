package filter

import (
	"strings"
	"testing"
)

func mustMatch(t *testing.T, key, value string) Condition {
	t.Helper()
	c, err := NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch(%q, %q): %v", key, value, err)
	}
	return c
}

func TestNewMatch_Errors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"empty key", "", "x", "key is required"},
		{"content not filterable", "content", "x", "not filterable"},
		{"empty value", "source", "", "value is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMatch(tc.key, tc.value)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditionsPerGroup+1)
	if _, err := NewExpression(nil, conds, nil); err == nil {
		t.Fatal("expected error for too many should conditions")
	}
}

func TestExpression_Matches(t *testing.T) {
	doc := map[string]string{"source": "technology.pdf", "category": "technology", "title": "Tech - Part 1"}

	tests := []struct {
		name string
		expr func(t *testing.T) Expression
		want bool
	}{
		{"empty matches all", func(*testing.T) Expression { return Expression{} }, true},
		{"must hit", func(t *testing.T) Expression {
			e, _ := NewExpression([]Condition{mustMatch(t, "source", "technology.pdf")}, nil, nil)
			return e
		}, true},
		{"must miss", func(t *testing.T) Expression {
			e, _ := NewExpression([]Condition{mustMatch(t, "source", "nepal.docx")}, nil, nil)
			return e
		}, false},
		{"must_not excludes", func(t *testing.T) Expression {
			e, _ := NewExpression(nil, nil, []Condition{mustMatch(t, "category", "technology")})
			return e
		}, false},
		{"should any", func(t *testing.T) Expression {
			e, _ := NewExpression(nil, []Condition{
				mustMatch(t, "category", "government"),
				mustMatch(t, "category", "technology"),
			}, nil)
			return e
		}, true},
		{"should none", func(t *testing.T) Expression {
			e, _ := NewExpression(nil, []Condition{mustMatch(t, "category", "government")}, nil)
			return e
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.expr(t).Matches(doc); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBySource(t *testing.T) {
	e, err := BySource("technology.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.Must()) != 1 || e.Must()[0].Key() != "source" || e.Must()[0].Match() != "technology.pdf" {
		t.Errorf("unexpected expression: %+v", e)
	}
	if _, err := BySource(""); err == nil {
		t.Error("expected error for empty source")
	}
}
