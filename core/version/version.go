// Package version compares library release strings and selects between
// behaviourally distinct encoding branches.
package version

import (
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Release thresholds at which scikit-learn changed fitted-state semantics.
const (
	IsolationForestCorrected   = "0.19"
	LogisticMultinomialBinary  = "0.20"
	LDASoftmax                 = "0.21"
	IsolationForestNodeSamples = "0.21"
	GradientBoostingComputed   = "0.21"
	MultiClassAuto             = "0.22"
	TreeMissingGoToLeft        = "1.3.0"
	GradientBoostingLink       = "1.4.0"
	MultiClassDeprecated       = "1.5.0"
	MultiClassAbsent           = "1.8.0"
)

// SupportedRange is the release window the encoders are tested against.
const SupportedRange = ">= 0.18, < 1.9"

// Version is a dotted-numeric release with pre/post/dev suffixes dropped.
type Version []int

// Parse keeps the leading numeric segments of s. "0.22.post1" is 0.22,
// "0.19rc1" and "0.19.dev1" are 0.19.
func Parse(s string) (Version, error) {
	var v Version
	for _, segment := range strings.Split(strings.TrimSpace(s), ".") {
		digits := leadingDigits(segment)
		if digits == "" {
			break
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, errors.Wrapf(err, "parse version %q", s)
		}
		v = append(v, n)
		if len(digits) < len(segment) {
			break
		}
	}
	if len(v) == 0 {
		return nil, errors.NewValueError("version.Parse", "not a version: "+s)
	}
	return v, nil
}

// MustParse is Parse for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// Compare compares a against the threshold b over the length of b. Extra
// segments of a are ignored and missing ones count as zero, so "0.19.1"
// equals "0.19" while "0.19" is before "0.19.1".
func Compare(a, b Version) int {
	for i := range b {
		var x int
		if i < len(a) {
			x = a[i]
		}
		switch {
		case x < b[i]:
			return -1
		case x > b[i]:
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// InSupportedRange reports whether v falls into SupportedRange.
func InSupportedRange(v Version) bool {
	parsed, err := goversion.NewVersion(v.String())
	if err != nil {
		return false
	}
	constraint, err := goversion.NewConstraint(SupportedRange)
	if err != nil {
		return false
	}
	return constraint.Check(parsed)
}

// Resolver answers version questions for one persisted object.
type Resolver struct {
	owner   *store.Object
	version Version
}

// NewResolver creates a resolver. An empty or unparseable version string
// means the version is unknown.
func NewResolver(owner *store.Object, s string) *Resolver {
	r := &Resolver{owner: owner}
	if s != "" {
		if v, err := Parse(s); err == nil {
			r.version = v
		}
	}
	return r
}

// Known reports whether a version was recorded.
func (r *Resolver) Known() bool {
	return r.version != nil
}

// Version returns the recorded version, nil when unknown.
func (r *Resolver) Version() Version {
	return r.version
}

// AtLeast reports whether the recorded version is at least threshold. An
// unknown version selects the oldest behaviour and reports false.
func (r *Resolver) AtLeast(threshold string) bool {
	if r.version == nil {
		return false
	}
	return Compare(r.version, MustParse(threshold)) >= 0
}

// Before is the negation of AtLeast for a known version; unknown versions
// report false as well.
func (r *Resolver) Before(threshold string) bool {
	if r.version == nil {
		return false
	}
	return Compare(r.version, MustParse(threshold)) < 0
}

// Probe maps an attribute name to the branch chosen when it is present.
type Probe[B any] struct {
	Attribute string
	Branch    B
}

// Resolve returns the branch of the first probe whose attribute is present
// on the owner. Probes are listed most recent revision first.
func Resolve[B any](r *Resolver, probes ...Probe[B]) (B, error) {
	for _, p := range probes {
		if r.owner.Has(p.Attribute) {
			return p.Branch, nil
		}
	}
	var zero B
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Attribute
	}
	version := ""
	if r.version != nil {
		version = r.version.String()
	}
	return zero, errors.NewUnsupportedRevisionError(r.owner.TypeKey(), version, names)
}
