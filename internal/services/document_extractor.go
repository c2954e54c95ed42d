package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
	FormatText DocumentFormat = "text"

	// DefaultMinNativeChars is the native PDF text length below which OCR is attempted.
	DefaultMinNativeChars = 50
)

// DetectFormat picks the document format from the file extension.
func DetectFormat(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return FormatText
	}
}

type ExtractOptions struct {
	// Format overrides extension-based detection when set.
	Format DocumentFormat
	// SkipOCR disables the OCR fallback for this call only.
	SkipOCR bool
}

type DocumentExtractor interface {
	// ExtractText returns the document text. An empty string with a nil error means
	// the document was readable but had no content.
	ExtractText(ctx context.Context, path string, opts ExtractOptions) (string, error)
}

type DocumentExtractorConfig struct {
	OCREnabled     bool
	MinNativeChars int
}

type documentExtractor struct {
	ocr            *OCRPipeline
	ocrEnabled     bool
	minNativeChars int
	logger         *zap.Logger
}

// NewDocumentExtractor creates the extractor. ocr may be nil when the OCR binaries are missing.
func NewDocumentExtractor(cfg DocumentExtractorConfig, ocr *OCRPipeline, logger *zap.Logger) DocumentExtractor {
	if cfg.MinNativeChars <= 0 {
		cfg.MinNativeChars = DefaultMinNativeChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentExtractor{
		ocr:            ocr,
		ocrEnabled:     cfg.OCREnabled,
		minNativeChars: cfg.MinNativeChars,
		logger:         logger,
	}
}

// ExtractText implements DocumentExtractor.
func (d *documentExtractor) ExtractText(ctx context.Context, path string, opts ExtractOptions) (string, error) {
	format := opts.Format
	if format == "" {
		format = DetectFormat(path)
	}

	switch format {
	case FormatPDF:
		return d.extractPDF(ctx, path, d.ocrEnabled && !opts.SkipOCR)
	case FormatDOCX:
		return d.extractDOCX(path)
	default:
		return d.extractPlain(path)
	}
}

func (d *documentExtractor) extractPDF(ctx context.Context, path string, ocrEnabled bool) (string, error) {
	text, nativeErr := readPDFText(path)
	if nativeErr != nil {
		d.logger.Warn("native pdf extraction failed", zap.String("path", path), zap.Error(nativeErr))
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) >= d.minNativeChars {
		return text, nil
	}

	if !ocrEnabled || d.ocr == nil {
		if ocrEnabled {
			d.logger.Warn("ocr backend unavailable, using native text", zap.String("path", path))
		}
		if nativeErr != nil {
			return "", &ExtractionError{Path: path, Stage: "pdf", Err: nativeErr}
		}
		return text, nil
	}

	d.logger.Info("native pdf text too short, falling back to ocr",
		zap.String("path", path),
		zap.Int("native_chars", utf8.RuneCountInString(strings.TrimSpace(text))),
	)

	ocrText, err := d.ocr.ExtractPDF(ctx, path)
	if err != nil {
		if errors.Is(err, ErrOCRUnavailable) && nativeErr == nil {
			d.logger.Warn("ocr backend unavailable, using native text", zap.String("path", path))
			return text, nil
		}
		return "", &ExtractionError{Path: path, Stage: "ocr", Err: err}
	}

	return ocrText, nil
}

// readPDFText concatenates the embedded text of every page.
func readPDFText(filePath string) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func (d *documentExtractor) extractDOCX(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Stage: "read", Err: err}
	}
	defer f.Close()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", &ExtractionError{Path: path, Stage: "docx", Err: err}
	}

	return CleanText(body), nil
}

func (d *documentExtractor) extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Stage: "read", Err: err}
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
