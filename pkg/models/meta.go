package models

import (
	"strings"
	"unicode"
)

// IssueTypeMeta describes how an issue type is presented
type IssueTypeMeta struct {
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// SeverityInfo describes how a severity is presented
type SeverityInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ProviderInfo describes an analysis provider
type ProviderInfo struct {
	Label         string `json:"label"`
	Description   string `json:"description"`
	SupportsVideo bool   `json:"supports_video"`
}

var issueTypeMeta = map[IssueType]IssueTypeMeta{
	TypeTextTruncation:     {Label: "Text Truncation", Icon: "✂️", Description: "Text is cut off"},
	TypeTextOverflow:       {Label: "Text Overflow", Icon: "📏", Description: "Text overflows its container"},
	TypeTextScaling:        {Label: "Text Scaling", Icon: "🔍", Description: "Text size problem"},
	TypeFontRendering:      {Label: "Font Rendering", Icon: "🔤", Description: "Glyphs render incorrectly"},
	TypeEncodingError:      {Label: "Encoding Error", Icon: "⚠️", Description: "Character encoding artifacts"},
	TypeUntranslated:       {Label: "Untranslated", Icon: "🌐", Description: "Source-language text left in build"},
	TypePlaceholderVisible: {Label: "Placeholder Visible", Icon: "🏷️", Description: "Unreplaced placeholder shown"},
	TypeLayoutBreak:        {Label: "Layout Break", Icon: "📐", Description: "Layout broken by localized text"},
	TypeOverlap:            {Label: "Overlap", Icon: "🔲", Description: "Elements overlap"},
	TypeAlignment:          {Label: "Alignment", Icon: "↔️", Description: "Misaligned text"},
	TypeCulturalIssue:      {Label: "Cultural Issue", Icon: "🌍", Description: "Culturally inappropriate content"},
}

var severityInfo = map[Severity]SeverityInfo{
	SeverityHigh:   {Label: "High", Color: "#ef4444"},
	SeverityMedium: {Label: "Medium", Color: "#eab308"},
	SeverityLow:    {Label: "Low", Color: "#22c55e"},
}

var providerInfo = map[Provider]ProviderInfo{
	ProviderGemini: {Label: "Google Gemini", Description: "images and video", SupportsVideo: true},
	ProviderClaude: {Label: "Anthropic Claude", Description: "images only", SupportsVideo: false},
	ProviderMock:   {Label: "Mock", Description: "canned demo issues", SupportsVideo: true},
}

// TypeMeta returns presentation data for t, falling back to a humanized label for unknown types
func TypeMeta(t IssueType) IssueTypeMeta {
	if m, ok := issueTypeMeta[t]; ok {
		return m
	}
	return IssueTypeMeta{Label: Humanize(string(t)), Icon: "•"}
}

// KnownType reports whether t belongs to the closed enumeration
func KnownType(t IssueType) bool {
	_, ok := issueTypeMeta[t]
	return ok
}

// SeverityMeta returns presentation data for s; unknown severities render neutral
func SeverityMeta(s Severity) SeverityInfo {
	if m, ok := severityInfo[s]; ok {
		return m
	}
	return SeverityInfo{Label: Humanize(string(s)), Color: "#ffffff"}
}

// KnownSeverity reports whether s belongs to the closed enumeration
func KnownSeverity(s Severity) bool {
	_, ok := severityInfo[s]
	return ok
}

// ProviderMeta returns provider capabilities. Unknown providers are assumed image-only.
func ProviderMeta(p Provider) ProviderInfo {
	if m, ok := providerInfo[p]; ok {
		return m
	}
	return ProviderInfo{Label: Humanize(string(p))}
}

// Humanize turns an enum value like "TEXT_OVERFLOW" into "Text Overflow"
func Humanize(raw string) string {
	words := strings.FieldsFunc(raw, func(r rune) bool { return r == '_' || r == '-' || unicode.IsSpace(r) })
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
