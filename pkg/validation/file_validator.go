package validation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/pkg/models"
)

const (
	// DefaultMaxImageSize caps each image upload
	DefaultMaxImageSize int64 = 10 * 1024 * 1024
	// DefaultMaxVideoSize caps the single video upload
	DefaultMaxVideoSize int64 = 100 * 1024 * 1024
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
var videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".webm": true}

// FileValidator checks uploads before they are sent for analysis
type FileValidator struct {
	maxImageSize int64
	maxVideoSize int64
}

// NewFileValidator creates a validator with the default size caps
func NewFileValidator() *FileValidator {
	return &FileValidator{
		maxImageSize: DefaultMaxImageSize,
		maxVideoSize: DefaultMaxVideoSize,
	}
}

// NewFileValidatorWithLimits creates a validator with custom size caps.
// Non-positive limits keep the defaults.
func NewFileValidatorWithLimits(maxImage, maxVideo int64) *FileValidator {
	v := NewFileValidator()
	if maxImage > 0 {
		v.maxImageSize = maxImage
	}
	if maxVideo > 0 {
		v.maxVideoSize = maxVideo
	}
	return v
}

// KindOf classifies one upload by MIME type, falling back to its extension
func KindOf(u models.Upload) models.InputType {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case imageTypes[ct]:
		return models.InputImage
	case videoTypes[ct]:
		return models.InputVideo
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	switch {
	case imageExtensions[ext]:
		return models.InputImage
	case videoExtensions[ext]:
		return models.InputVideo
	}
	return ""
}

// DetectInputType returns the common kind of files. It is empty when no file
// is recognized and an error when images and videos are mixed.
func DetectInputType(files []models.Upload) (models.InputType, error) {
	var hasImages, hasVideos bool
	for _, f := range files {
		switch KindOf(f) {
		case models.InputImage:
			hasImages = true
		case models.InputVideo:
			hasVideos = true
		}
	}
	switch {
	case hasImages && hasVideos:
		return "", apperrors.NewValidationError("Please upload either images or a video, not both.", nil)
	case hasImages:
		return models.InputImage, nil
	case hasVideos:
		return models.InputVideo, nil
	}
	return "", nil
}

// Validate checks files against requested and returns the effective input
// type, which follows the files when they can be classified
func (v *FileValidator) Validate(files []models.Upload, requested models.InputType) (models.InputType, error) {
	if len(files) == 0 {
		return "", apperrors.NewValidationError("No files provided.", nil)
	}

	detected, err := DetectInputType(files)
	if err != nil {
		return "", err
	}
	effective := requested
	if detected != "" {
		effective = detected
	}
	if effective != models.InputImage && effective != models.InputVideo {
		return "", apperrors.NewValidationError(fmt.Sprintf("Unsupported input type %q.", requested), nil)
	}

	if effective == models.InputVideo && len(files) > 1 {
		return "", apperrors.NewValidationError("Video analysis supports only one video file at a time.", nil)
	}

	allowed, maxSize := imageExtensions, v.maxImageSize
	if effective == models.InputVideo {
		allowed, maxSize = videoExtensions, v.maxVideoSize
	}

	var problems []string
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !allowed[ext] {
			problems = append(problems, fmt.Sprintf("'%s': unsupported format. Allowed: %s", f.Filename, extensionList(allowed)))
		}
		if f.Size() > maxSize {
			problems = append(problems, fmt.Sprintf("'%s': file too large (%.1fMB > %dMB)",
				f.Filename, float64(f.Size())/1024/1024, maxSize/1024/1024))
		}
	}
	if len(problems) > 0 {
		return "", apperrors.NewValidationError(strings.Join(problems, "; "), nil)
	}
	return effective, nil
}

func extensionList(exts map[string]bool) string {
	out := make([]string, 0, len(exts))
	for e := range exts {
		out = append(out, e)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
