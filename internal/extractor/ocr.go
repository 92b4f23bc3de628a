package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/models"
)

// OCRStrategy rasterizes a page and runs optical recognition on the image.
// It is the last and slowest fallback, used for scanned statements with no
// text layer. Requires pdftoppm (poppler-utils) and tesseract; when either
// is missing the strategy reports itself unavailable and the chain simply
// gets shorter.
type OCRStrategy struct {
	lang string
}

// NewOCRStrategy builds the strategy for the given recognition language
// ("por" for Brazilian statements).
func NewOCRStrategy(lang string) *OCRStrategy {
	if lang == "" {
		lang = "por"
	}
	return &OCRStrategy{lang: lang}
}

// Method implements Strategy.
func (s *OCRStrategy) Method() models.ExtractionMethod {
	return models.MethodOCR
}

// Available implements Strategy by probing for the external tools.
func (s *OCRStrategy) Available() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	return true
}

// Extract implements Strategy. The context deadline bounds both external
// commands, so a stuck recognition marks only this page as unreadable
// instead of stalling the run.
func (s *OCRStrategy) Extract(ctx context.Context, page document.Page) (Result, error) {
	docPath, err := page.Document().TempFile()
	if err != nil {
		return Result{}, err
	}

	tmpDir, err := os.MkdirTemp("", "extrato-ocr-*")
	if err != nil {
		return Result{}, fmt.Errorf("creating OCR temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Rasterize just this page at 300 DPI.
	pageNum := strconv.Itoa(page.Number)
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", pageNum, "-l", pageNum, "-r", "300", "-png", docPath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	imgFile, err := findPageImage(tmpDir)
	if err != nil {
		return Result{}, err
	}

	// PSM 4: single column of variable-size text, a good fit for statements.
	outBase := strings.TrimSuffix(imgFile, ".png")
	cmd = exec.CommandContext(ctx, "tesseract",
		imgFile, outBase, "-l", s.lang, "--psm", "4")
	if out, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("tesseract failed: %w (output: %s)", err, string(out))
	}

	data, err := os.ReadFile(outBase + ".txt") // #nosec G304 -- path built from our temp dir
	if err != nil {
		return Result{}, fmt.Errorf("reading OCR output: %w", err)
	}

	return Result{
		Text:   strings.TrimSpace(string(data)),
		Method: models.MethodOCR,
	}, nil
}

func findPageImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading OCR temp dir: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	if len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page image")
	}
	sort.Strings(images)
	return images[0], nil
}
