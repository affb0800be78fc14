package artgen

import (
	"fmt"
	"strings"
)

// ComposePrompt builds the text sent to the image provider. A field counts
// as absent when it is blank after trimming.
//
//	ComposePrompt("Happy", "", "Abstract", []string{"red", "blue"})
//	// "Happy, in Abstract style, with colors red, blue"
//
// The result may be empty; Generate rejects that.
func ComposePrompt(mood, prompt, style string, colors []string) string {
	mood = strings.TrimSpace(mood)
	prompt = strings.TrimSpace(prompt)
	style = strings.TrimSpace(style)

	var b strings.Builder
	switch {
	case mood != "" && prompt != "":
		b.WriteString(mood)
		b.WriteString(", ")
		b.WriteString(prompt)
	case prompt != "":
		b.WriteString(prompt)
	default:
		b.WriteString(mood)
	}

	if style != "" {
		fmt.Fprintf(&b, ", in %s style", style)
	}

	if len(colors) > 0 {
		b.WriteString(", with colors ")
		b.WriteString(strings.Join(colors, ", "))
	}

	return b.String()
}

// CollaborationPrompt is the fixed template for blending two moods.
func CollaborationPrompt(mood1, mood2 string) string {
	return fmt.Sprintf("Collaborative art blending %s and %s", mood1, mood2)
}

// leadingKeyword lower-cases prompt and returns its first comma-separated
// token, trimmed. For composed prompts that is the mood.
func leadingKeyword(prompt string) string {
	head, _, _ := strings.Cut(strings.ToLower(prompt), ",")
	return strings.TrimSpace(head)
}
