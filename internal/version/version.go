// Package version implements the version ordering used for package and
// target version numbers. Version numbers follow the strict
// MAJOR.MINOR.PATCH form: three non-negative integers, no pre-release or
// build metadata. Anything else is rejected at ingestion time.
package version

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
)

var strictPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// MaxLen bounds stored version numbers.
const MaxLen = 16

// Version is a parsed, comparable version number.
type Version struct {
	v   *semver.Version
	raw string
}

// Parse parses a version number, rejecting anything outside the strict
// three-integer form.
func Parse(s string) (Version, error) {
	if len(s) > MaxLen {
		return Version{}, fmt.Errorf("version number %q exceeds %d characters", s, MaxLen)
	}
	if !strictPattern.MatchString(s) {
		return Version{}, fmt.Errorf("version number %q does not match MAJOR.MINOR.PATCH", s)
	}
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("version number %q: %w", s, err)
	}
	return Version{v: v, raw: s}, nil
}

// IsValid reports whether s would be accepted by Parse.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (v Version) String() string { return v.raw }

// Compare returns -1, 0, or 1 comparing numerically per component.
func (v Version) Compare(o Version) int { return v.v.Compare(o.v) }

// Less orders two raw version numbers. Both are expected to have passed
// Parse at ingestion; an unparsable string sorts lowest so stored data
// from before the strict gate cannot panic a sort.
func Less(a, b string) bool {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	if errA != nil {
		return errB == nil
	}
	if errB != nil {
		return false
	}
	return va.Compare(vb) < 0
}

// SortDescending orders version numbers highest first.
func SortDescending(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool {
		return Less(numbers[j], numbers[i])
	})
}

// InRange reports whether s falls within the optional inclusive bounds.
// An empty bound means unbounded on that side.
func InRange(s, min, max string) (bool, error) {
	v, err := Parse(s)
	if err != nil {
		return false, err
	}
	if min != "" {
		lo, err := Parse(min)
		if err != nil {
			return false, err
		}
		if v.Compare(lo) < 0 {
			return false, nil
		}
	}
	if max != "" {
		hi, err := Parse(max)
		if err != nil {
			return false, err
		}
		if v.Compare(hi) > 0 {
			return false, nil
		}
	}
	return true, nil
}
