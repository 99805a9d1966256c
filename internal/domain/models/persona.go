package models

// TypingStyle shapes how a persona's replies should read.
type TypingStyle struct {
	Speed          string  `json:"speed"`
	TypoRate       float64 `json:"typo_rate"`
	EmojiFrequency string  `json:"emoji_frequency"`
}

// PersonaProfile describes one synthetic victim identity.
type PersonaProfile struct {
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	Background    string      `json:"background"`
	TechLiteracy  string      `json:"tech_literacy"`
	Typing        TypingStyle `json:"typing"`
	Traits        []string    `json:"traits"`
	SystemPrompt  string      `json:"-"`
	FallbackLines []string    `json:"-"`
}
