package validation

import (
	"strings"
	"testing"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/pkg/models"
)

func upload(name, ct string, size int) models.Upload {
	return models.Upload{Filename: name, ContentType: ct, Data: make([]byte, size)}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		in   models.Upload
		want models.InputType
	}{
		{"png mime", upload("a.bin", "image/png", 1), models.InputImage},
		{"mime with params", upload("a.bin", "video/mp4; codecs=avc1", 1), models.InputVideo},
		{"extension fallback", upload("clip.MOV", "", 1), models.InputVideo},
		{"unknown", upload("notes.txt", "text/plain", 1), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.in); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	v := NewFileValidator()

	got, err := v.Validate([]models.Upload{upload("menu.png", "image/png", 5*1024*1024)}, models.InputImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.InputImage {
		t.Errorf("got %q, want image", got)
	}

	// dropped files switch the requested mode
	got, err = v.Validate([]models.Upload{upload("trailer.mp4", "video/mp4", 1024)}, models.InputImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.InputVideo {
		t.Errorf("got %q, want video", got)
	}
}

func TestValidate_Rejects(t *testing.T) {
	v := NewFileValidatorWithLimits(1024, 4096)

	tests := []struct {
		name     string
		files    []models.Upload
		mode     models.InputType
		contains string
	}{
		{"empty", nil, models.InputImage, "No files"},
		{"mixed", []models.Upload{upload("a.png", "image/png", 1), upload("b.mp4", "video/mp4", 1)}, models.InputImage, "not both"},
		{"two videos", []models.Upload{upload("a.mp4", "video/mp4", 1), upload("b.webm", "video/webm", 1)}, models.InputVideo, "only one video"},
		{"oversized image", []models.Upload{upload("big.png", "image/png", 2048)}, models.InputImage, "file too large"},
		{"oversized video", []models.Upload{upload("big.mp4", "video/mp4", 8192)}, models.InputVideo, "file too large"},
		{"wrong extension", []models.Upload{upload("shot.gif", "image/png", 10)}, models.InputImage, "unsupported format"},
		{"unknown mode", []models.Upload{upload("notes.txt", "", 10)}, "audio", "Unsupported input type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.files, tt.mode)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	v := NewFileValidatorWithLimits(10, 0)
	_, err := v.Validate([]models.Upload{
		upload("a.png", "image/png", 20),
		upload("b.bmp", "image/png", 1),
	}, models.InputImage)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := apperrors.UserMessage(err)
	if !strings.Contains(msg, "'a.png'") || !strings.Contains(msg, "'b.bmp'") || !strings.Contains(msg, "; ") {
		t.Errorf("unexpected message %q", msg)
	}
}
