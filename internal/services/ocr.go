package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultOCRDPI        = 300
	DefaultOCRConfidence = 50
	DefaultOCRScale      = 2.0
)

// OCRWord is one recognized word with its engine confidence (0-100, -1 when unknown).
type OCRWord struct {
	Text       string
	Confidence float64
}

// PageRenderer rasterizes every PDF page into outDir and returns the image paths in page order.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// TextRecognizer runs OCR on a single page image.
type TextRecognizer interface {
	RecognizeWords(ctx context.Context, imagePath string) ([]OCRWord, error)
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

type OCRConfig struct {
	TesseractCmd  string
	PdftoppmCmd   string
	DPI           int
	MinConfidence float64
	Scale         float64
}

// OCRPipeline renders, preprocesses and recognizes scanned PDFs.
type OCRPipeline struct {
	renderer      PageRenderer
	recognizer    TextRecognizer
	dpi           int
	minConfidence float64
	scale         float64
	logger        *zap.Logger
}

func NewOCRPipeline(renderer PageRenderer, recognizer TextRecognizer, cfg OCRConfig, logger *zap.Logger) *OCRPipeline {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultOCRDPI
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultOCRConfidence
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultOCRScale
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRPipeline{
		renderer:      renderer,
		recognizer:    recognizer,
		dpi:           cfg.DPI,
		minConfidence: cfg.MinConfidence,
		scale:         cfg.Scale,
		logger:        logger,
	}
}

// NewTesseractOCR wires pdftoppm and tesseract. It returns ErrOCRUnavailable when
// either binary cannot be found.
func NewTesseractOCR(cfg OCRConfig, logger *zap.Logger) (*OCRPipeline, error) {
	if cfg.TesseractCmd == "" {
		cfg.TesseractCmd = "tesseract"
	}
	if cfg.PdftoppmCmd == "" {
		cfg.PdftoppmCmd = "pdftoppm"
	}

	tesseract, err := exec.LookPath(cfg.TesseractCmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	pdftoppm, err := exec.LookPath(cfg.PdftoppmCmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}

	return NewOCRPipeline(
		&popplerRenderer{cmd: pdftoppm},
		&tesseractCLI{cmd: tesseract, lang: "eng", psm: 3},
		cfg,
		logger,
	), nil
}

// ExtractPDF OCRs every page. Pages are joined with a blank line and cleaned of common OCR artifacts.
func (p *OCRPipeline) ExtractPDF(ctx context.Context, path string) (string, error) {
	workDir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create ocr work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pages, err := p.renderer.RenderPages(ctx, path, workDir, p.dpi)
	if err != nil {
		return "", fmt.Errorf("failed to render pdf pages: %w", err)
	}

	pageTexts := make([]string, 0, len(pages))
	for i, page := range pages {
		text, err := p.recognizePage(ctx, page, filepath.Join(workDir, fmt.Sprintf("prep-%d.png", i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to recognize page %d: %w", i+1, err)
		}
		pageTexts = append(pageTexts, text)
	}

	return PostprocessOCRText(strings.Join(pageTexts, "\n\n")), nil
}

func (p *OCRPipeline) recognizePage(ctx context.Context, pagePath, prepPath string) (string, error) {
	imagePath := pagePath
	if err := preprocessImageFile(pagePath, prepPath, p.scale); err != nil {
		p.logger.Warn("ocr preprocessing failed, using raw page", zap.String("page", pagePath), zap.Error(err))
	} else {
		imagePath = prepPath
	}

	words, err := p.recognizer.RecognizeWords(ctx, imagePath)
	if err != nil {
		p.logger.Warn("word-level ocr failed, using plain ocr", zap.Error(err))
		return p.recognizer.RecognizeText(ctx, imagePath)
	}

	var kept []string
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text != "" && w.Confidence >= p.minConfidence {
			kept = append(kept, text)
		}
	}
	if len(kept) > 0 {
		return strings.Join(kept, " "), nil
	}

	// Nothing passed the confidence filter; accept the engine's unfiltered transcription.
	return p.recognizer.RecognizeText(ctx, imagePath)
}

var (
	mailDomainRe  = regexp.MustCompile(`(?i)(@[A-Za-z0-9-]+|\b(?:gmail|yahoo|outlook|hotmail|icloud|protonmail|proton|live|rediffmail))[\s,;:]+(com|in|org|net|co\.in|edu)\b`)
	inlineSpaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	yearRangeRe   = regexp.MustCompile(`(\d{4})\s*(?:-+|to)\s*(\d{4})`)
	nonASCIIRe    = regexp.MustCompile(`[^\x00-\x7F]+`)
	dashReplacer  = strings.NewReplacer("\u2013", "-", "\u2014", "-", "\u2012", "-", "\u2212", "-")
	nbspReplacer  = strings.NewReplacer("\u00a0", " ")
	pageSuffixRe  = regexp.MustCompile(`-(\d+)\.png$`)
)

// PostprocessOCRText repairs frequent OCR artifacts.
func PostprocessOCRText(text string) string {
	if text == "" {
		return text
	}

	text = nbspReplacer.Replace(text)
	text = mailDomainRe.ReplaceAllString(text, "$1.$2")
	text = inlineSpaceRe.ReplaceAllString(text, " ")
	text = dashReplacer.Replace(text)
	text = yearRangeRe.ReplaceAllString(text, "$1-$2")
	text = nonASCIIRe.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

type popplerRenderer struct {
	cmd string
}

// RenderPages implements PageRenderer.
func (r *popplerRenderer) RenderPages(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, r.cmd, "-r", strconv.Itoa(dpi), "-png", pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("pdftoppm produced no pages")
	}

	sortPagePaths(pages)
	return pages, nil
}

// sortPagePaths orders pdftoppm output (page-1.png, page-02.png, ...) by page number.
func sortPagePaths(pages []string) {
	number := func(path string) int {
		m := pageSuffixRe.FindStringSubmatch(path)
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return number(pages[i]) < number(pages[j])
	})
}

type tesseractCLI struct {
	cmd  string
	lang string
	psm  int
}

func (t *tesseractCLI) args(imagePath string, extra ...string) []string {
	args := []string{imagePath, "stdout", "--oem", "1", "--psm", strconv.Itoa(t.psm), "-l", t.lang}
	return append(args, extra...)
}

// RecognizeWords implements TextRecognizer.
func (t *tesseractCLI) RecognizeWords(ctx context.Context, imagePath string) ([]OCRWord, error) {
	out, err := exec.CommandContext(ctx, t.cmd, t.args(imagePath, "tsv")...).Output()
	if err != nil {
		return nil, fmt.Errorf("tesseract tsv: %w", err)
	}
	return parseTesseractTSV(string(out)), nil
}

// RecognizeText implements TextRecognizer.
func (t *tesseractCLI) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	out, err := exec.CommandContext(ctx, t.cmd, t.args(imagePath)...).Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

// parseTesseractTSV reads word rows from tesseract's tsv output.
// Columns: level page block par line word left top width height conf text.
func parseTesseractTSV(tsv string) []OCRWord {
	var words []OCRWord
	for _, line := range strings.Split(tsv, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "level") {
			continue
		}

		fields := strings.SplitN(line, "\t", 12)
		if len(fields) < 12 || fields[0] != "5" {
			continue
		}

		conf, err := strconv.ParseFloat(strings.TrimSpace(fields[10]), 64)
		if err != nil {
			conf = -1
		}
		words = append(words, OCRWord{Text: fields[11], Confidence: conf})
	}
	return words
}
