package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Python developer with Docker</w:t></w:r></w:p>
</w:body>
</w:document>`

func writeDocx(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"[Content_Types].xml": docxContentTypes,
		"word/document.xml":   docxBody,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatPDF, DetectFormat("cv.PDF"))
	assert.Equal(t, FormatDOCX, DetectFormat("/tmp/cv.docx"))
	assert.Equal(t, FormatText, DetectFormat("cv.txt"))
	assert.Equal(t, FormatText, DetectFormat("README"))
}

func TestExtractPlainTextDropsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go developer\xff\nSQL"), 0o644))

	ex := NewDocumentExtractor(DocumentExtractorConfig{}, nil, nil)
	text, err := ex.ExtractText(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Go developer\nSQL", text)
}

func TestExtractEmptyTextFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	ex := NewDocumentExtractor(DocumentExtractorConfig{}, nil, nil)
	text, err := ex.ExtractText(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractMissingFile(t *testing.T) {
	ex := NewDocumentExtractor(DocumentExtractorConfig{}, nil, nil)
	_, err := ex.ExtractText(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), ExtractOptions{})

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "read", extErr.Stage)
}

func TestExtractDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	writeDocx(t, path)

	ex := NewDocumentExtractor(DocumentExtractorConfig{}, nil, nil)
	text, err := ex.ExtractText(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Python developer with Docker")
}

func TestExtractFormatOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(path, []byte("plain resume"), 0o644))

	ex := NewDocumentExtractor(DocumentExtractorConfig{}, nil, nil)
	text, err := ex.ExtractText(context.Background(), path, ExtractOptions{Format: FormatText})
	require.NoError(t, err)
	assert.Equal(t, "plain resume", text)
}

func TestExtractBrokenPDFWithoutOCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not really a pdf"), 0o644))

	ex := NewDocumentExtractor(DocumentExtractorConfig{OCREnabled: false}, nil, nil)
	_, err := ex.ExtractText(context.Background(), path, ExtractOptions{})

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "pdf", extErr.Stage)
}

// writeBlankPDF writes a well-formed single-page PDF with no content stream.
func writeBlankPDF(t *testing.T, path string) {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtractBlankPDFWithoutOCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.pdf")
	writeBlankPDF(t, path)

	rec := &fakeRecognizer{words: map[int][]OCRWord{1: {{Text: "Scanned", Confidence: 95}}}}
	ocr := NewOCRPipeline(&fakeRenderer{pages: 1}, rec, OCRConfig{}, nil)

	for name, ex := range map[string]DocumentExtractor{
		"disabled": NewDocumentExtractor(DocumentExtractorConfig{OCREnabled: false}, ocr, nil),
		"skipped":  NewDocumentExtractor(DocumentExtractorConfig{OCREnabled: true}, ocr, nil),
	} {
		t.Run(name, func(t *testing.T) {
			text, err := ex.ExtractText(context.Background(), path, ExtractOptions{SkipOCR: name == "skipped"})
			require.NoError(t, err)
			assert.Equal(t, "", text)

			profile := newTestProfileExtractor(nil).Extract(text)
			assert.Nil(t, profile.Name)
			assert.Empty(t, profile.Emails)
			assert.Empty(t, profile.Skills)
		})
	}
	assert.Empty(t, rec.seen)
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("scanned bytes"), 0o644))

	rec := &fakeRecognizer{words: map[int][]OCRWord{
		1: {{Text: "Backend", Confidence: 88}, {Text: "Engineer", Confidence: 90}},
	}}
	ocr := NewOCRPipeline(&fakeRenderer{pages: 1}, rec, OCRConfig{}, nil)
	ex := NewDocumentExtractor(DocumentExtractorConfig{OCREnabled: true}, ocr, nil)

	text, err := ex.ExtractText(context.Background(), path, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", text)

	_, err = ex.ExtractText(context.Background(), path, ExtractOptions{SkipOCR: true})
	require.Error(t, err, "per-call opt out skips the ocr fallback")
}

func TestExtractPDFOCRFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("scanned bytes"), 0o644))

	ocr := NewOCRPipeline(&fakeRenderer{err: ErrOCRUnavailable}, &fakeRecognizer{}, OCRConfig{}, nil)
	ex := NewDocumentExtractor(DocumentExtractorConfig{OCREnabled: true}, ocr, nil)

	_, err := ex.ExtractText(context.Background(), path, ExtractOptions{})
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "ocr", extErr.Stage)
	assert.True(t, errors.Is(err, ErrOCRUnavailable))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb", CleanText("\n  a  \n\n\t\n b\n"))
	assert.Equal(t, "", CleanText("   "))
}
