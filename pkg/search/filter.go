package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Operator is the comparison of a Condition.
type Operator string

const (
	OpEqual        Operator = "="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpContains     Operator = "CONTAINS"
)

// Condition compares one field of an element with a value.
type Condition struct {
	Field   string
	Op      Operator
	Text    string
	Number  float64
	Numeric bool
}

func (c Condition) String() string {
	if c.Op == OpContains {
		return fmt.Sprintf("CONTAINS(%s, '%s')", c.Field, c.Text)
	}
	if c.Numeric {
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, strconv.FormatFloat(c.Number, 'g', -1, 64))
	}
	return fmt.Sprintf("%s %s '%s'", c.Field, c.Op, c.Text)
}

// Filter is a disjunction of conjunctions: an element matches when every
// condition of at least one block holds.
type Filter struct {
	Blocks [][]Condition
}

var (
	orRegex       = regexp.MustCompile(`(?i)\s+OR\s+`)
	andRegex      = regexp.MustCompile(`(?i)\s+AND\s+`)
	containsRegex = regexp.MustCompile(`(?i)^CONTAINS\s*\(\s*([\w.]+)\s*,\s*['"](.+?)['"]\s*\)$`)
)

// ParseFilter parses expressions such as
//
//	age >= 30 AND name = 'alice' OR CONTAINS(bio, 'graph databases')
//
// OR binds looser than AND. Quoted values are strings; unquoted values that
// parse as numbers are numeric.
func ParseFilter(filter string) (Filter, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return Filter{}, fmt.Errorf("empty filter")
	}

	var f Filter
	for _, orBlock := range orRegex.Split(filter, -1) {
		orBlock = strings.TrimSpace(orBlock)
		if orBlock == "" {
			continue
		}
		var block []Condition
		for _, sub := range andRegex.Split(orBlock, -1) {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				continue
			}
			c, err := parseCondition(sub)
			if err != nil {
				return Filter{}, fmt.Errorf("error in filter '%s': %w", sub, err)
			}
			block = append(block, c)
		}
		if len(block) > 0 {
			f.Blocks = append(f.Blocks, block)
		}
	}
	if len(f.Blocks) == 0 {
		return Filter{}, fmt.Errorf("empty filter")
	}
	return f, nil
}

func parseCondition(s string) (Condition, error) {
	if m := containsRegex.FindStringSubmatch(s); m != nil {
		return Condition{Field: m[1], Op: OpContains, Text: m[2]}, nil
	}

	// Longer operators first so that "<=" is not read as "<".
	var (
		op      Operator
		opIndex = -1
	)
	for _, candidate := range []Operator{OpLessEqual, OpGreaterEqual, OpEqual, OpLess, OpGreater} {
		if idx := strings.Index(s, string(candidate)); idx != -1 {
			op, opIndex = candidate, idx
			break
		}
	}
	if opIndex == -1 {
		return Condition{}, fmt.Errorf("operator not found (use =, <, >, <=, >= or CONTAINS)")
	}

	c := Condition{
		Field: strings.TrimSpace(s[:opIndex]),
		Op:    op,
	}
	if c.Field == "" {
		return Condition{}, fmt.Errorf("missing field name")
	}
	raw := strings.TrimSpace(s[opIndex+len(op):])
	if unquoted, ok := unquote(raw); ok {
		c.Text = unquoted
	} else if n, err := strconv.ParseFloat(raw, 64); err == nil {
		c.Number, c.Numeric, c.Text = n, true, raw
	} else {
		c.Text = raw
	}

	if op != OpEqual && !c.Numeric {
		return Condition{}, fmt.Errorf("value for operator '%s' must be numeric: '%s'", op, raw)
	}
	return c, nil
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return s, false
}
