package analysis

import (
	"fmt"
	"strings"
)

const monitorPrompt = `You are a website monitoring expert analyzing screenshots for changes. I will provide you with two screenshots of the same website URL: %s

The first image is the BASELINE (reference) screenshot.
The second image is the CURRENT screenshot taken more recently.

Please analyze these screenshots and provide a detailed comparison report in the following JSON format:

{
    "has_changes": true/false,
    "severity": "none|minor|moderate|major|critical",
    "summary": "Brief summary of changes found",
    "changes_detected": [
        {
            "type": "layout|content|styling|functionality|error|availability",
            "description": "Detailed description of the change",
            "location": "Where on the page this change occurs",
            "impact": "Potential impact of this change"
        }
    ],
    "availability_status": "available|partially_available|unavailable|error",
    "recommendations": ["List of recommended actions if any issues found"]
}

Focus on:
- Layout changes (elements moved, resized, disappeared)
- Content changes (text differences, images changed)
- Error messages or broken elements
- Overall site availability and functionality
- Visual styling changes
- Any elements that appear broken or missing

Be thorough but practical - highlight changes that would matter for deployment monitoring.`

// BuildPrompt returns the comparison prompt for target. Tiles get a note
// naming the strip of the page they cover.
func BuildPrompt(target Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, monitorPrompt, target.URL)

	if s := target.Section; s != nil && s.Count > 1 {
		fmt.Fprintf(&b, "\n\nBoth images are section %d of %d of a full-page screenshot, covering pixel rows %d to %d. ",
			s.Index+1, s.Count, s.Start, s.End)
		b.WriteString("Content may be cut off at the top or bottom edge; neighbouring sections overlap slightly, so do not report a cut-off element as a change. ")
		b.WriteString("Describe locations relative to this section.")
	}

	b.WriteString("\n\nRespond with ONLY the JSON object.")
	return b.String()
}
