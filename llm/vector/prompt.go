package vector

import "fmt"

const svgRules = `RULES:
- The SVG code must be a single, self-contained block.
- Use a viewBox="0 0 100 100".
- The background MUST be transparent.
- Use simple shapes (<path>, <circle>, <rect>, etc.) and flat colors. No gradients or complex filters.
- Do not include any raster data (like <image> tags).
- Do not include any scripts.
- The entire output should be ONLY the SVG code, starting with <svg> and ending with </svg>. Do not include markdown fences like ` + "```svg" + ` or any explanations.`

// BuildPrompt returns the instruction sent with the description. With a
// reference image the model is asked to replicate it.
func BuildPrompt(description string, withReference bool) string {
	if withReference {
		return fmt.Sprintf(`You are an expert vector artist specializing in SVG conversion.
Analyze the provided PNG image of a logo and convert it into clean, simple, flat-style SVG code.
The original text description for this logo was: "%s".
Replicate the shapes, colors, and overall style of the provided image as closely as possible.

%s`, description, svgRules)
	}
	return fmt.Sprintf(`You are an expert vector artist.
Design a professional, modern, minimalist logo for a company that does "%s" and write it as clean, simple, flat-style SVG code.
Flat design, high contrast, legible at small sizes.

%s`, description, svgRules)
}
