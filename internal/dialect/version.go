package dialect

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a (major, minor, micro) product version.
type Version struct {
	Major, Minor, Micro int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	for _, pair := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Micro, o.Micro}} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

var versionRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts the first dotted version number from a product
// version string such as "PostgreSQL 9.4.26 on x86_64" or "10.6.12-MariaDB".
func ParseVersion(s string) (Version, bool) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Micro, _ = strconv.Atoi(m[3])
	}
	return v, true
}

// VersionPredicate selects the versions a dialect applies to.
type VersionPredicate func(Version) bool

// AtLeast matches versions greater than or equal to major.minor.micro.
func AtLeast(major, minor, micro int) VersionPredicate {
	floor := Version{major, minor, micro}
	return func(v Version) bool { return v.Compare(floor) >= 0 }
}

// Below matches versions strictly lower than major.minor.micro.
func Below(major, minor, micro int) VersionPredicate {
	ceil := Version{major, minor, micro}
	return func(v Version) bool { return v.Compare(ceil) < 0 }
}
