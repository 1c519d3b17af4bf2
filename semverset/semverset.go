// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package semverset supplies a production-grade pubgrub.Version and
// pubgrub.Condition pair backed by github.com/Masterminds/semver/v3 for
// parsing and ordering, composed with the core package's own interval-set
// boolean algebra for union/intersection/complement, since semver.Constraints
// does not expose those (it only offers a yes/no Check).
package semverset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	pubgrub "github.com/contriboss-labs/pubgrub-solver"
)

// Version wraps a Masterminds/semver Version so it satisfies pubgrub.Version.
type Version struct {
	v *semver.Version
}

// Parse parses a semantic version string using Masterminds/semver's relaxed
// grammar (accepts a missing "v" prefix, missing minor/patch components).
func Parse(raw string) (Version, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semverset: parse %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// MustParse is like Parse but panics on error; useful for literal versions
// in tests and fixtures.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version's original textual form.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// Sort implements pubgrub.Version.
func (v Version) Sort(other pubgrub.Version) int {
	o, ok := other.(Version)
	if !ok || o.v == nil || v.v == nil {
		return strings.Compare(v.String(), other.String())
	}
	return v.v.Compare(o.v)
}

// hasPrerelease reports whether v carries a prerelease component.
func (v Version) hasPrerelease() bool {
	return v.v != nil && v.v.Prerelease() != ""
}

var _ pubgrub.Version = Version{}

// Constraint is a pubgrub.Condition backed by a pubgrub.VersionSet built
// from range syntax (comparator chains, "^", "~", " - " hyphen ranges,
// "||" disjunction), so it can also serve set algebra via ToVersionSet.
//
// A prerelease version matches only if the range text names that exact
// prerelease (same major.minor.patch triple and prerelease identifier): a
// plain range like ">=1.0.0" never matches "1.5.0-beta.1", and
// "^1.2.3-alpha.1" does not match "1.2.3-alpha.2".
type Constraint struct {
	raw     string
	set     pubgrub.VersionSet
	anchors map[[3]uint64]map[string]bool
}

// String implements pubgrub.Condition.
func (c Constraint) String() string {
	return c.raw
}

// Satisfies implements pubgrub.Condition.
func (c Constraint) Satisfies(ver pubgrub.Version) bool {
	v, ok := ver.(Version)
	if !ok {
		return false
	}
	if v.hasPrerelease() && !c.allowsExactPrerelease(v) {
		return false
	}
	return c.set.Contains(ver)
}

// allowsExactPrerelease reports whether the constraint's raw text names v's
// exact prerelease version, e.g. "^1.2.3-alpha.1" anchors 1.2.3-alpha.1 but
// not 1.2.3-alpha.2 or 1.2.4-alpha.1.
func (c Constraint) allowsExactPrerelease(v Version) bool {
	key := [3]uint64{v.v.Major(), v.v.Minor(), v.v.Patch()}
	return c.anchors[key][v.v.Prerelease()]
}

// prereleaseAnchorPattern matches a "major.minor.patch-prerelease" literal
// anywhere in a constraint's raw text, so parseConjunction's per-clause
// parsing doesn't need to thread anchor bookkeeping through every branch.
var prereleaseAnchorPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)-([0-9A-Za-z.-]+)`)

func extractAnchors(raw string) map[[3]uint64]map[string]bool {
	anchors := make(map[[3]uint64]map[string]bool)
	for _, m := range prereleaseAnchorPattern.FindAllStringSubmatch(raw, -1) {
		major, _ := strconv.ParseUint(m[1], 10, 64)
		minor, _ := strconv.ParseUint(m[2], 10, 64)
		patch, _ := strconv.ParseUint(m[3], 10, 64)
		key := [3]uint64{major, minor, patch}
		if anchors[key] == nil {
			anchors[key] = make(map[string]bool)
		}
		anchors[key][m[4]] = true
	}
	return anchors
}

// ToVersionSet implements pubgrub.VersionSetConverter, letting the CDCL
// solver perform intersection/union/complement directly on this condition.
func (c Constraint) ToVersionSet() pubgrub.VersionSet {
	return c.set
}

var (
	_ pubgrub.Condition          = Constraint{}
	_ pubgrub.VersionSetConverter = Constraint{}
)

// ParseConstraint parses range syntax into a Constraint. Supported forms:
//
//	"1.2.3"              exact version
//	">=1.0.0 <2.0.0"      comparator chain (implicit AND, space separated)
//	">=1.0.0, <2.0.0"     comparator chain (comma separated)
//	"^1.2.3"              caret range: compatible-with, per semver's own rule
//	"~1.2.3"              tilde range: patch-level changes allowed
//	"1.2.3 - 2.0.0"       inclusive hyphen range
//	"<expr> || <expr>"    disjunction of any of the above
//	"*" or ""             any version
func ParseConstraint(raw string) (Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "*" {
		return Constraint{raw: raw, set: (&pubgrub.VersionIntervalSet{}).Full(), anchors: extractAnchors(raw)}, nil
	}

	result := (&pubgrub.VersionIntervalSet{}).Empty()
	for _, branch := range strings.Split(trimmed, "||") {
		branch = strings.TrimSpace(branch)
		if branch == "" {
			return Constraint{}, fmt.Errorf("semverset: empty disjunct in %q", raw)
		}
		set, err := parseConjunction(branch)
		if err != nil {
			return Constraint{}, err
		}
		result = result.Union(set)
	}

	return Constraint{raw: raw, set: result, anchors: extractAnchors(raw)}, nil
}

func parseConjunction(expr string) (pubgrub.VersionSet, error) {
	if lo, hi, ok := splitHyphenRange(expr); ok {
		loVer, err := Parse(lo)
		if err != nil {
			return nil, fmt.Errorf("semverset: hyphen range lower bound: %w", err)
		}
		hiVer, err := Parse(hi)
		if err != nil {
			return nil, fmt.Errorf("semverset: hyphen range upper bound: %w", err)
		}
		return pubgrub.NewRangeVersionSet(loVer, true, hiVer, true), nil
	}

	tokens := strings.FieldsFunc(expr, func(r rune) bool { return r == ',' || r == ' ' })
	if len(tokens) == 0 {
		return nil, fmt.Errorf("semverset: empty constraint clause in %q", expr)
	}

	current := (&pubgrub.VersionIntervalSet{}).Full()
	for _, token := range tokens {
		set, err := parseComparator(token)
		if err != nil {
			return nil, err
		}
		current = current.Intersection(set)
	}
	return current, nil
}

// splitHyphenRange recognizes "X - Y" range syntax, distinct from a
// negative-prefixed comparator, by requiring whitespace on both sides of
// the hyphen.
func splitHyphenRange(expr string) (lo, hi string, ok bool) {
	const sep = " - "
	idx := strings.Index(expr, sep)
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(expr[:idx]), strings.TrimSpace(expr[idx+len(sep):]), true
}

func parseComparator(token string) (pubgrub.VersionSet, error) {
	switch {
	case strings.HasPrefix(token, "^"):
		v, err := Parse(token[1:])
		if err != nil {
			return nil, fmt.Errorf("semverset: caret range: %w", err)
		}
		return pubgrub.NewRangeVersionSet(v, true, caretCeiling(v), false), nil
	case strings.HasPrefix(token, "~"):
		v, err := Parse(token[1:])
		if err != nil {
			return nil, fmt.Errorf("semverset: tilde range: %w", err)
		}
		return pubgrub.NewRangeVersionSet(v, true, tildeCeiling(v), false), nil
	case strings.HasPrefix(token, ">="):
		v, err := Parse(token[2:])
		if err != nil {
			return nil, err
		}
		return pubgrub.NewAtLeastVersionSet(v, true), nil
	case strings.HasPrefix(token, ">"):
		v, err := Parse(token[1:])
		if err != nil {
			return nil, err
		}
		return pubgrub.NewAtLeastVersionSet(v, false), nil
	case strings.HasPrefix(token, "<="):
		v, err := Parse(token[2:])
		if err != nil {
			return nil, err
		}
		return pubgrub.NewAtMostVersionSet(v, true), nil
	case strings.HasPrefix(token, "<"):
		v, err := Parse(token[1:])
		if err != nil {
			return nil, err
		}
		return pubgrub.NewAtMostVersionSet(v, false), nil
	case strings.HasPrefix(token, "!="):
		v, err := Parse(token[2:])
		if err != nil {
			return nil, err
		}
		return pubgrub.NewRangeVersionSet(v, true, v, true).Complement(), nil
	case strings.HasPrefix(token, "=="), strings.HasPrefix(token, "="):
		v, err := Parse(strings.TrimLeft(token, "="))
		if err != nil {
			return nil, err
		}
		return pubgrub.NewRangeVersionSet(v, true, v, true), nil
	default:
		v, err := Parse(token)
		if err != nil {
			return nil, fmt.Errorf("semverset: %q is neither an operator nor a bare version: %w", token, err)
		}
		return pubgrub.NewRangeVersionSet(v, true, v, true), nil
	}
}

// caretCeiling returns the exclusive upper bound of a caret range (^x.y.z):
// the next version that would change the leftmost non-zero component,
// mirroring npm/cargo semantics.
func caretCeiling(v Version) Version {
	switch {
	case v.v.Major() > 0:
		return MustParse(fmt.Sprintf("%d.0.0", v.v.Major()+1))
	case v.v.Minor() > 0:
		return MustParse(fmt.Sprintf("0.%d.0", v.v.Minor()+1))
	default:
		return MustParse(fmt.Sprintf("0.0.%d", v.v.Patch()+1))
	}
}

// tildeCeiling returns the exclusive upper bound of a tilde range (~x.y.z):
// patch-level changes are allowed, minor is pinned.
func tildeCeiling(v Version) Version {
	return MustParse(fmt.Sprintf("%d.%d.0", v.v.Major(), v.v.Minor()+1))
}

// CanonicalName lowercases a package name before interning it, for
// registries (npm, RubyGems, PyPI) whose package names are
// case-insensitive. pubgrub.MakeName itself stays exact/raw, treating a
// name as an opaque, hashable identifier; this normalization is opt-in and
// lives at the domain boundary instead.
func CanonicalName(raw string) pubgrub.Name {
	return pubgrub.MakeName(strings.ToLower(raw))
}
