// Package mockdata produces canned analysis results so the overlay can be
// exercised without an AI backend.
package mockdata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/pkg/models"
)

// AnalyzedFrames is reported for every mocked video run
const AnalyzedFrames = 24

// FallbackLanguage is used for alternatives in an unknown language
const FallbackLanguage = "ko-KR"

type template struct {
	typ          models.IssueType
	severity     models.Severity
	description  string
	location     models.BoundingBox
	language     string
	suggestion   string
	timestamp    string
	originalText string
}

var imageTemplates = []template{
	{
		typ:          models.TypeTextTruncation,
		severity:     models.SeverityHigh,
		description:  "Menu button text is truncated in Japanese localization.",
		location:     models.BoundingBox{X1: 680, Y1: 45, X2: 820, Y2: 85},
		language:     "ja-JP",
		suggestion:   "Widen the button or abbreviate the label.",
		originalText: "オプション設...",
	},
	{
		typ:          models.TypeTextOverflow,
		severity:     models.SeverityMedium,
		description:  "German translation overflows the dialog box.",
		location:     models.BoundingBox{X1: 200, Y1: 300, X2: 500, Y2: 360},
		language:     "de-DE",
		suggestion:   "Widen the dialog or shorten the German text.",
		originalText: "Spieleinstellungen ändern",
	},
	{
		typ:          models.TypeUntranslated,
		severity:     models.SeverityHigh,
		description:  "Navigation label remains in English in Korean build.",
		location:     models.BoundingBox{X1: 50, Y1: 150, X2: 200, Y2: 190},
		language:     "ko-KR",
		suggestion:   "Translate 'Settings' as '설정'.",
		originalText: "Settings",
	},
	{
		typ:          models.TypeFontRendering,
		severity:     models.SeverityLow,
		description:  "Vietnamese diacritics are partially clipped.",
		location:     models.BoundingBox{X1: 400, Y1: 500, X2: 600, Y2: 540},
		language:     "vi-VN",
		suggestion:   "Increase the font line height so tone marks are not clipped.",
		originalText: "Cài đặt trò chơi",
	},
	{
		typ:          models.TypeOverlap,
		severity:     models.SeverityMedium,
		description:  "Chinese text overlaps with adjacent icon.",
		location:     models.BoundingBox{X1: 750, Y1: 600, X2: 950, Y2: 650},
		language:     "zh-CN",
		suggestion:   "Leave spacing between the icon and the text.",
		originalText: "游戏设置选项",
	},
}

var videoTemplates = []template{
	{
		typ:          models.TypeTextTruncation,
		severity:     models.SeverityHigh,
		description:  "Subtitle text truncated during cutscene dialog.",
		location:     models.BoundingBox{X1: 100, Y1: 800, X2: 900, Y2: 880},
		language:     "ja-JP",
		suggestion:   "Enlarge the subtitle area or split the line.",
		timestamp:    "0:15.3",
		originalText: "冒険者の皆さん...",
	},
	{
		typ:          models.TypePlaceholderVisible,
		severity:     models.SeverityHigh,
		description:  "Placeholder {player_name} visible in HUD.",
		location:     models.BoundingBox{X1: 50, Y1: 50, X2: 300, Y2: 90},
		language:     "de-DE",
		suggestion:   "A variable binding is missing. Check the {player_name} substitution.",
		timestamp:    "0:42.7",
		originalText: "Willkommen, {player_name}!",
	},
	{
		typ:          models.TypeLayoutBreak,
		severity:     models.SeverityMedium,
		description:  "Inventory menu layout breaks in French locale.",
		location:     models.BoundingBox{X1: 300, Y1: 200, X2: 700, Y2: 600},
		language:     "fr-FR",
		suggestion:   "Make the inventory grid layout flexible.",
		timestamp:    "1:05.2",
		originalText: "Équipement du personnage",
	},
	{
		typ:          models.TypeEncodingError,
		severity:     models.SeverityHigh,
		description:  "Korean text shows encoding artifacts.",
		location:     models.BoundingBox{X1: 500, Y1: 400, X2: 800, Y2: 480},
		language:     "ko-KR",
		suggestion:   "Check the UTF-8 encoding.",
		timestamp:    "1:38.5",
		originalText: "스킬 설명이 깨짐",
	},
}

var alternatives = map[string][]string{
	"ja-JP": {"オプション", "設定", "OP設定"},
	"de-DE": {"Einstell.", "Setup", "Opt."},
	"ko-KR": {"설정", "옵션", "세팅"},
	"zh-CN": {"设置", "选项", "配置"},
	"fr-FR": {"Paramètres", "Config.", "Régl."},
	"vi-VN": {"Cài đặt", "Tùy chọn", "Setup"},
}

// CountFunc picks how many issues a file of the given type gets
type CountFunc func(models.InputType) int

// RandomCount draws 2-3 issues per image and 3-4 per video
func RandomCount(t models.InputType) int {
	if t == models.InputVideo {
		return 3 + rand.Intn(2)
	}
	return 2 + rand.Intn(2)
}

// AllTemplates uses every template, for deterministic output
func AllTemplates(t models.InputType) int {
	if t == models.InputVideo {
		return len(videoTemplates)
	}
	return len(imageTemplates)
}

// Generator fabricates analysis results and alternatives
type Generator struct {
	count CountFunc
	now   func() time.Time
}

// NewGenerator creates a generator. A nil count uses RandomCount.
func NewGenerator(count CountFunc) *Generator {
	if count == nil {
		count = RandomCount
	}
	return &Generator{count: count, now: time.Now}
}

// Issues builds the mocked issues for one file
func Issues(filename string, t models.InputType, count int) []models.Issue {
	templates := imageTemplates
	if t == models.InputVideo {
		templates = videoTemplates
	}
	if count > len(templates) {
		count = len(templates)
	}
	issues := make([]models.Issue, 0, count)
	for i := 0; i < count; i++ {
		tpl := templates[i]
		issues = append(issues, models.Issue{
			ID:           fmt.Sprintf("%s-issue-%d", filename, i+1),
			Type:         tpl.typ,
			Severity:     tpl.severity,
			Description:  tpl.description,
			Location:     tpl.location,
			Language:     tpl.language,
			Suggestion:   tpl.suggestion,
			Timestamp:    tpl.timestamp,
			FrameURL:     filename,
			OriginalText: tpl.originalText,
		})
	}
	return issues
}

// Analyze returns a result for files as the mock backend would
func (g *Generator) Analyze(ctx context.Context, files []models.Upload, provider models.Provider, inputType models.InputType) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("Analysis cancelled", err)
	}
	if provider == models.ProviderClaude && inputType == models.InputVideo {
		return nil, apperrors.NewValidationError("Claude does not support video analysis. Use Gemini instead.", nil)
	}

	start := g.now()
	res := &models.AnalysisResult{
		Success:   true,
		Provider:  string(provider),
		InputType: string(inputType),
		Results:   make([]models.FileResult, 0, len(files)),
	}
	for _, f := range files {
		name := f.Filename
		if name == "" {
			name = "unknown"
		}
		issues := Issues(name, inputType, g.count(inputType))
		res.Results = append(res.Results, models.FileResult{Filename: name, Issues: issues})
		res.TotalIssues += len(issues)
	}
	if inputType == models.InputVideo {
		frames := AnalyzedFrames
		res.AnalyzedFrames = &frames
	}
	res.ProcessingTime = math.Round(g.now().Sub(start).Seconds()*100) / 100
	return res, nil
}

// GenerateAlternatives returns the canned alternatives for language
func (g *Generator) GenerateAlternatives(ctx context.Context, originalText, language string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("Alternatives cancelled", err)
	}
	return Alternatives(language), nil
}

// Alternatives returns a copy of the canned list for language, falling back
// to FallbackLanguage
func Alternatives(language string) []string {
	alts, ok := alternatives[language]
	if !ok {
		alts = alternatives[FallbackLanguage]
	}
	out := make([]string, len(alts))
	copy(out, alts)
	return out
}
