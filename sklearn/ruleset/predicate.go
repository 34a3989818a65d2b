package ruleset

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenName
	tokenNumber
	tokenString
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(src); {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '\'' || c == '"':
			j := i + 1
			var sb strings.Builder
			for ; j < len(src) && rune(src[j]) != c; j++ {
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				sb.WriteByte(src[j])
			}
			if j >= len(src) {
				return nil, errors.Newf("unterminated string at %d", i)
			}
			tokens = append(tokens, token{kind: tokenString, text: sb.String(), pos: i})
			i = j + 1
		case unicode.IsDigit(c) || c == '.' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1])):
			j := i
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || strings.ContainsRune(".eE", rune(src[j])) ||
				(src[j] == '-' || src[j] == '+') && (src[j-1] == 'e' || src[j-1] == 'E')) {
				j++
			}
			tokens = append(tokens, token{kind: tokenNumber, text: src[i:j], pos: i})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_' || src[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: tokenName, text: src[i:j], pos: i})
			i = j
		default:
			op := punctuation(src[i:])
			if op == "" {
				return nil, errors.Newf("unexpected %q at %d", c, i)
			}
			tokens = append(tokens, token{kind: tokenPunct, text: op, pos: i})
			i += len(op)
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(src)}), nil
}

func punctuation(src string) string {
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">", "(", ")", "[", "]", ",", "-"} {
		if strings.HasPrefix(src, op) {
			return op
		}
	}
	return ""
}

// parser translates boolean expressions over the columns of a data frame
// X into PMML predicates.
type parser struct {
	src      string
	tokens   []token
	pos      int
	features []schema.Feature
	enc      *schema.Encoder
}

// ParsePredicate translates a Python-style boolean expression such as
// "X['a'] > 0 and X[1] in ['x', 'y']" into a PMML predicate. Columns are
// addressed by name or position in features.
func ParsePredicate(src string, features []schema.Feature, enc *schema.Encoder) (pmml.Predicate, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, errors.NewValueError("ParsePredicate", fmt.Sprintf("%q: %v", src, err))
	}
	p := &parser{src: src, tokens: tokens, features: features, enc: enc}
	predicate, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokenEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return predicate, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(kind tokenKind, text string) bool {
	if t := p.peek(); t.kind == kind && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, text string) error {
	if !p.accept(kind, text) {
		t := p.peek()
		return p.errorf(t, "expected %q, got %q", text, t.text)
	}
	return nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return errors.NewValueError("ParsePredicate", fmt.Sprintf("%q at %d: %s", p.src, t.pos, fmt.Sprintf(format, args...)))
}

func (p *parser) or() (pmml.Predicate, error) {
	return p.chain(pmml.BoolOr, "or", p.and)
}

func (p *parser) and() (pmml.Predicate, error) {
	return p.chain(pmml.BoolAnd, "and", p.atom)
}

// chain parses operand (keyword operand)* into one flat compound predicate.
func (p *parser) chain(op pmml.BooleanOperator, keyword string, operand func() (pmml.Predicate, error)) (pmml.Predicate, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	predicates := []pmml.Predicate{first}
	for p.accept(tokenName, keyword) {
		next, err := operand()
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, next)
	}
	if len(predicates) == 1 {
		return first, nil
	}
	return &pmml.CompoundPredicate{BooleanOperator: op, Predicates: predicates}, nil
}

func (p *parser) atom() (pmml.Predicate, error) {
	t := p.peek()
	switch {
	case p.accept(tokenPunct, "("):
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		return inner, p.expect(tokenPunct, ")")
	case p.accept(tokenName, "True"):
		return &pmml.True{}, nil
	case p.accept(tokenName, "False"):
		return &pmml.False{}, nil
	case t.kind == tokenName && isNullCheck(t.text) != 0:
		p.next()
		if err := p.expect(tokenPunct, "("); err != nil {
			return nil, err
		}
		f, err := p.column()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenPunct, ")"); err != nil {
			return nil, err
		}
		op := pmml.OpIsMissing
		if isNullCheck(t.text) < 0 {
			op = pmml.OpIsNotMissing
		}
		return &pmml.SimplePredicate{Field: f.Name(), Operator: op}, nil
	}
	return p.comparison()
}

// isNullCheck returns 1 for the pandas missing-value checks and -1 for
// their negations.
func isNullCheck(name string) int {
	switch name {
	case "pandas.isnull", "pandas.isna", "pd.isnull", "pd.isna":
		return 1
	case "pandas.notnull", "pandas.notna", "pd.notnull", "pd.notna":
		return -1
	}
	return 0
}

var comparisonOperators = map[string]pmml.Operator{
	"==": pmml.OpEqual,
	"!=": pmml.OpNotEqual,
	"<":  pmml.OpLessThan,
	"<=": pmml.OpLessOrEqual,
	">":  pmml.OpGreaterThan,
	">=": pmml.OpGreaterOrEqual,
}

func (p *parser) comparison() (pmml.Predicate, error) {
	f, err := p.column()
	if err != nil {
		return nil, err
	}
	t := p.next()
	switch {
	case t.kind == tokenPunct:
		op, ok := comparisonOperators[t.text]
		if !ok {
			return nil, p.errorf(t, "unexpected %q", t.text)
		}
		value, isString, err := p.literal()
		if err != nil {
			return nil, err
		}
		name, err := p.field(f, isString)
		if err != nil {
			return nil, err
		}
		return &pmml.SimplePredicate{Field: name, Operator: op, Value: value}, nil
	case t.kind == tokenName && t.text == "is":
		op := pmml.OpIsMissing
		if p.accept(tokenName, "not") {
			op = pmml.OpIsNotMissing
		}
		if err := p.expect(tokenName, "None"); err != nil {
			return nil, err
		}
		return &pmml.SimplePredicate{Field: f.Name(), Operator: op}, nil
	case t.kind == tokenName && (t.text == "in" || t.text == "not"):
		negate := t.text == "not"
		if negate {
			if err := p.expect(tokenName, "in"); err != nil {
				return nil, err
			}
		}
		values, isString, err := p.list()
		if err != nil {
			return nil, err
		}
		name, err := p.field(f, isString)
		if err != nil {
			return nil, err
		}
		op := pmml.SetIsIn
		if negate {
			op = pmml.SetIsNotIn
		}
		return &pmml.SimpleSetPredicate{Field: name, BooleanOperator: op, Array: pmml.NewStringArray(values)}, nil
	}
	return nil, p.errorf(t, "expected comparison, got %q", t.text)
}

// column parses X[index] or X[name].
func (p *parser) column() (schema.Feature, error) {
	if err := p.expect(tokenName, "X"); err != nil {
		return nil, err
	}
	if err := p.expect(tokenPunct, "["); err != nil {
		return nil, err
	}
	t := p.next()
	var f schema.Feature
	switch t.kind {
	case tokenNumber:
		i, err := strconv.Atoi(t.text)
		if err != nil || i < 0 || i >= len(p.features) {
			return nil, p.errorf(t, "column index %s out of range [0, %d)", t.text, len(p.features))
		}
		f = p.features[i]
	case tokenString:
		for _, candidate := range p.features {
			if candidate.Name() == t.text {
				f = candidate
				break
			}
		}
		if f == nil {
			return nil, p.errorf(t, "unknown column %q", t.text)
		}
	default:
		return nil, p.errorf(t, "expected column index or name, got %q", t.text)
	}
	return f, p.expect(tokenPunct, "]")
}

// literal returns the value as written; strings lose their quotes.
func (p *parser) literal() (string, bool, error) {
	negative := p.accept(tokenPunct, "-")
	t := p.next()
	switch {
	case t.kind == tokenNumber:
		if negative {
			return "-" + t.text, false, nil
		}
		return t.text, false, nil
	case t.kind == tokenString && !negative:
		return t.text, true, nil
	case t.kind == tokenName && !negative && (t.text == "True" || t.text == "False"):
		return strings.ToLower(t.text), false, nil
	}
	return "", false, p.errorf(t, "expected literal, got %q", t.text)
}

func (p *parser) list() ([]string, bool, error) {
	if err := p.expect(tokenPunct, "["); err != nil {
		return nil, false, err
	}
	var values []string
	anyString := false
	for {
		value, isString, err := p.literal()
		if err != nil {
			return nil, false, err
		}
		values = append(values, value)
		anyString = anyString || isString
		if p.accept(tokenPunct, "]") {
			return values, anyString, nil
		}
		if err := p.expect(tokenPunct, ","); err != nil {
			return nil, false, err
		}
	}
}

// field returns the field compared against. Untyped input columns compared
// against strings become categorical string fields.
func (p *parser) field(f schema.Feature, stringValue bool) (string, error) {
	if _, ok := f.(*schema.WildcardFeature); ok && stringValue {
		cf, err := schema.ToCategoricalFeature(f, p.enc, pmml.DataTypeString, nil)
		if err != nil {
			return "", err
		}
		return cf.Name(), nil
	}
	return f.Name(), nil
}
