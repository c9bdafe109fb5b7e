package media

import (
	"encoding/json"
)

const (
	DefaultShortCaption = "I looked very adorable in this memory."
	DefaultBlogSnippet  = "Dear diary, I supervised my human with elegance, whiskers, and excellent snuggle judgment."
	DefaultConfidence   = 0.5
)

var DefaultMoodTags = []string{"cozy", "loved"}

// Caption is the narration attached to a single media file
type Caption struct {
	Filename     string   `json:"filename"`
	ShortCaption string   `json:"shortCaption"`
	BlogSnippet  string   `json:"blogSnippet"`
	MoodTags     []string `json:"moodTags"`
	Confidence   float64  `json:"confidence"`
}

// CaptionMap is keyed by filename
type CaptionMap map[string]Caption

// rawCaption is a caption as found on disk, where any field may be missing
type rawCaption struct {
	ShortCaption string   `json:"shortCaption"`
	BlogSnippet  string   `json:"blogSnippet"`
	MoodTags     []string `json:"moodTags"`
	Confidence   *float64 `json:"confidence"`
}

func normalizeCaption(raw rawCaption, filename string) Caption {
	c := Caption{
		Filename:     filename,
		ShortCaption: raw.ShortCaption,
		BlogSnippet:  raw.BlogSnippet,
		MoodTags:     raw.MoodTags,
		Confidence:   DefaultConfidence,
	}
	if c.ShortCaption == "" {
		c.ShortCaption = DefaultShortCaption
	}
	if c.BlogSnippet == "" {
		c.BlogSnippet = DefaultBlogSnippet
	}
	if len(c.MoodTags) == 0 {
		c.MoodTags = append([]string{}, DefaultMoodTags...)
	}
	if raw.Confidence != nil {
		c.Confidence = *raw.Confidence
	}
	return c
}

// ParseCaptions decodes a caption file (a JSON object of filename -> caption).
// Every entry is filled out with defaults.
func ParseCaptions(raw []byte) (CaptionMap, error) {
	parsed := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	result := CaptionMap{}
	for filename, value := range parsed {
		entry := rawCaption{}
		// A malformed entry falls back to the defaults, instead of sinking the whole file
		json.Unmarshal(value, &entry)
		result[filename] = normalizeCaption(entry, filename)
	}
	return result, nil
}

// CaptionFor returns the caption of filename, or the default caption if there is none
func (m CaptionMap) CaptionFor(filename string) Caption {
	if c, ok := m[filename]; ok {
		return c
	}
	return normalizeCaption(rawCaption{}, filename)
}
