package domains

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestVersionTagProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("parse and String round-trip", prop.ForAll(
		func(major, minor, patch int) bool {
			s := fmt.Sprintf("v%d.%d.%d", major, minor, patch)
			tag, err := ParseVersionTag(s)
			if err != nil {
				return false
			}
			again, err := ParseVersionTag(tag.String())
			return err == nil && again == tag && tag.String() == s
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("strings with trailing text are rejected", prop.ForAll(
		func(major int, suffix string) bool {
			if suffix == "" {
				return true
			}
			_, err := ParseVersionTag(fmt.Sprintf("v%d.0.0%s", major, suffix))
			return err != nil
		},
		gen.IntRange(0, 100),
		gen.RegexMatch(`^[a-z .\-]{1,5}$`),
	))

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b []int) bool {
			x := VersionTag{a[0], a[1], a[2]}
			y := VersionTag{b[0], b[1], b[2]}
			return x.Compare(y) == -y.Compare(x)
		},
		gen.SliceOfN(3, gen.IntRange(0, 5)),
		gen.SliceOfN(3, gen.IntRange(0, 5)),
	))

	properties.Property("AddVersion keeps tags strictly descending", prop.ForAll(
		func(raw []int) bool {
			meta := TemplateMetaData{}
			for i := 0; i+2 < len(raw); i += 3 {
				_ = meta.AddVersion(VersionTag{raw[i], raw[i+1], raw[i+2]})
			}
			for i := 1; i < len(meta.Versions); i++ {
				if !meta.Versions[i].Less(meta.Versions[i-1]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
