package domains

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

var versionPattern = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)$`)

// VersionTag is a semantic version tag of the form vMAJOR.MINOR.PATCH.
type VersionTag struct {
	Major int
	Minor int
	Patch int
}

// IsVersion reports whether s is a well-formed version tag.
func IsVersion(s string) bool {
	return versionPattern.MatchString(s)
}

func ParseVersionTag(s string) (VersionTag, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return VersionTag{}, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, s)
	}

	parts := [3]int{}
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return VersionTag{}, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, s)
		}
		parts[i] = n
	}

	return VersionTag{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

func MustParseVersionTag(s string) VersionTag {
	tag, err := ParseVersionTag(s)
	if err != nil {
		panic(err)
	}
	return tag
}

func (t VersionTag) String() string {
	return fmt.Sprintf("v%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Compare returns -1, 0 or 1 when t is lower than, equal to or higher than o.
func (t VersionTag) Compare(o VersionTag) int {
	switch {
	case t.Major != o.Major:
		return sign(t.Major - o.Major)
	case t.Minor != o.Minor:
		return sign(t.Minor - o.Minor)
	default:
		return sign(t.Patch - o.Patch)
	}
}

func (t VersionTag) Less(o VersionTag) bool {
	return t.Compare(o) < 0
}

func (t VersionTag) Equal(o VersionTag) bool {
	return t.Compare(o) == 0
}

func (t VersionTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *VersionTag) UnmarshalText(text []byte) error {
	parsed, err := ParseVersionTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t VersionTag) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *VersionTag) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("%w: version tag must be a string", ErrInvalidVersionFormat)
	}
	return t.UnmarshalText([]byte(s))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
