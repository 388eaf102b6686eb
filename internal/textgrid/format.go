package textgrid

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// tierName is the single interval tier every annotation carries.
const tierName = "word"

// formatSeconds renders a time the way the downstream tooling has always
// received it: shortest round-trip decimal, integral values keep ".0",
// and zero is a bare "0".
func formatSeconds(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quote escapes a label for a TextGrid string literal.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Format renders the annotation as a long-form TextGrid with one interval
// tier. The output has no trailing newline.
func Format(a Annotation) string {
	dur := formatSeconds(a.Duration)

	var sb strings.Builder
	sb.WriteString("File type = \"ooTextFile\"\n")
	sb.WriteString("Object class = \"TextGrid\"\n\n")
	sb.WriteString("xmin = 0\n")
	fmt.Fprintf(&sb, "xmax = %s\n", dur)
	sb.WriteString("tiers? <exists>\n")
	sb.WriteString("size = 1\n")
	sb.WriteString("item []:\n")
	sb.WriteString("    item [1]:\n")
	sb.WriteString("        class = \"IntervalTier\"\n")
	fmt.Fprintf(&sb, "        name = %s\n", quote(tierName))
	sb.WriteString("        xmin = 0\n")
	fmt.Fprintf(&sb, "        xmax = %s\n", dur)
	fmt.Fprintf(&sb, "        intervals: size = %d", len(a.Intervals))

	for _, iv := range a.Intervals {
		fmt.Fprintf(&sb, "\n            intervals [%d]:", iv.Index)
		fmt.Fprintf(&sb, "\n                xmin = %s", formatSeconds(iv.Start))
		fmt.Fprintf(&sb, "\n                xmax = %s", formatSeconds(iv.End))
		fmt.Fprintf(&sb, "\n                text = %s", quote(iv.Label))
	}
	return sb.String()
}

// WriteFile writes the formatted annotation to path.
func WriteFile(path string, a Annotation) error {
	return os.WriteFile(path, []byte(Format(a)), 0644)
}
