package artgen

// DefaultMockImage is served when the prompt does not start with a known mood.
const DefaultMockImage = "https://placehold.co/512x512/808080/ffffff?text=Mood+Art"

var mockImages = map[string]string{
	"happy":    "https://placehold.co/512x512/ffd700/333333?text=Happy",
	"sad":      "https://placehold.co/512x512/4a6fa5/ffffff?text=Sad",
	"calm":     "https://placehold.co/512x512/7fb3a3/ffffff?text=Calm",
	"excited":  "https://placehold.co/512x512/ff6f3c/ffffff?text=Excited",
	"angry":    "https://placehold.co/512x512/c0392b/ffffff?text=Angry",
	"inspired": "https://placehold.co/512x512/8e44ad/ffffff?text=Inspired",
	"mixed":    "https://placehold.co/512x512/2c3e50/ffffff?text=Mixed",
}

// SelectMock returns the placeholder image for the mood the prompt starts
// with. It has no side effects; the simulated latency is applied by the
// Generator.
func SelectMock(prompt string) string {
	if url, ok := mockImages[leadingKeyword(prompt)]; ok {
		return url
	}
	return DefaultMockImage
}
