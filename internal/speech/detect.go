// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

// =============================================================================
// SUPPORTED LANGUAGES
// =============================================================================

// Language pairs a BCP-47 tag with its display name.
type Language struct {
	Tag  string
	Name string
}

// SupportedLanguages lists the languages offered for voice input, in
// display order.
var SupportedLanguages = []Language{
	{"en-US", "English (US)"},
	{"en-IN", "English (India)"},
	{"hi-IN", "Hindi"},
	{"ta-IN", "Tamil"},
	{"te-IN", "Telugu"},
	{"bn-IN", "Bengali"},
	{"mr-IN", "Marathi"},
	{"gu-IN", "Gujarati"},
	{"kn-IN", "Kannada"},
	{"ml-IN", "Malayalam"},
	{"pa-IN", "Punjabi"},
	{"ur-IN", "Urdu"},
}

// IsSupported reports whether the tag is one of the supported languages.
func IsSupported(tag string) bool {
	for _, lang := range SupportedLanguages {
		if lang.Tag == tag {
			return true
		}
	}
	return false
}

// DisplayName returns the display name for a supported tag, or the tag
// itself when unknown.
func DisplayName(tag string) string {
	for _, lang := range SupportedLanguages {
		if lang.Tag == tag {
			return lang.Name
		}
	}
	return tag
}

// =============================================================================
// SCRIPT DETECTION
// =============================================================================

// scriptRanges maps Unicode script blocks to language tags, in priority
// order. Devanagari maps to Hindi even though Marathi shares the script;
// mixed-script text takes the first matching block.
var scriptRanges = []struct {
	lo, hi rune
	tag    string
}{
	{0x0900, 0x097F, "hi-IN"}, // Devanagari
	{0x0B80, 0x0BFF, "ta-IN"}, // Tamil
	{0x0C00, 0x0C7F, "te-IN"}, // Telugu
	{0x0980, 0x09FF, "bn-IN"}, // Bengali
	{0x0A80, 0x0AFF, "gu-IN"}, // Gujarati
	{0x0C80, 0x0CFF, "kn-IN"}, // Kannada
	{0x0D00, 0x0D7F, "ml-IN"}, // Malayalam
	{0x0A00, 0x0A7F, "pa-IN"}, // Gurmukhi
	{0x0600, 0x06FF, "ur-IN"}, // Arabic
}

// DetectLanguage guesses the language of text from its script, falling
// back to "en-US" for Latin or unrecognized input. Detection is by
// presence: a single character of a script is enough, and earlier blocks
// win over later ones when scripts are mixed.
func DetectLanguage(text string) string {
	for _, block := range scriptRanges {
		for _, r := range text {
			if r >= block.lo && r <= block.hi {
				return block.tag
			}
		}
	}
	return "en-US"
}
