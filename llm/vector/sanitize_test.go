package vector

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"svg fence inline", "```svg<svg viewBox=\"0 0 100 100\"></svg>```", `<svg viewBox="0 0 100 100"></svg>`},
		{"svg fence multiline", "```svg\n<svg></svg>\n```", "<svg></svg>"},
		{"bare fence", "```\n<svg></svg>\n```", "<svg></svg>"},
		{"xml fence", "```xml\n<svg></svg>```", "<svg></svg>"},
		{"no fence", "  <svg></svg>\n", "<svg></svg>"},
		{"only opening", "```svg\n<svg></svg>", "<svg></svg>"},
		{"empty", "", ""},
		{"only fences", "``````", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestLooksLikeSVG(t *testing.T) {
	assert.True(t, LooksLikeSVG(`<SVG viewBox="0 0 1 1"></SVG>`))
	assert.False(t, LooksLikeSVG("I cannot draw that"))
}

// 任意不含反引号、以 '<' 开头的标记：加围栏后剥离应还原，剥离操作幂等。
func TestProperty_StripFencesRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	markup := gen.AlphaString().Map(func(s string) string {
		return "<svg>" + s + "</svg>"
	})
	lang := gen.OneConstOf("", "svg", "xml", "html")
	sep := gen.OneConstOf("", "\n", " \n")

	properties.Property("fenced markup strips back to markup", prop.ForAll(
		func(body, l, nl string) bool {
			return StripFences("```"+l+nl+body+nl+"```") == body
		},
		markup, lang, sep,
	))

	properties.Property("strip is idempotent", prop.ForAll(
		func(body, l string) bool {
			once := StripFences("```" + l + body + "```")
			return StripFences(once) == once && !strings.Contains(once, "```")
		},
		markup, lang,
	))

	properties.TestingRun(t)
}
