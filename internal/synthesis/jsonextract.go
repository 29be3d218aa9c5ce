package synthesis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// rawEntry mirrors the JSON object the provider is instructed to return.
type rawEntry struct {
	CleanedText string   `json:"cleanedText"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON locates and parses the structured object in a generative
// response. Order: fenced code block first, then the whole response, then
// fail closed to nil. Generative providers routinely wrap JSON in Markdown
// fences despite instructions not to.
func extractJSON(response string) *rawEntry {
	if m := fencedBlockRe.FindStringSubmatch(response); m != nil {
		if entry := tryParse(m[1]); entry != nil {
			return entry
		}
	}
	return tryParse(strings.TrimSpace(response))
}

func tryParse(candidate string) *rawEntry {
	var entry rawEntry
	if err := json.Unmarshal([]byte(candidate), &entry); err != nil {
		return nil
	}
	return &entry
}
