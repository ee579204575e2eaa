package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
)

// ExtractText downloads a stored object and converts it to plain text based on
// file extension and declared mime type. It never returns an error: download or
// parse failures degrade to a sentinel placeholder so the document pipeline can
// continue with that text as content.
func ExtractText(ctx context.Context, store object.ObjectStore, objectPath, fileName, mimeType string) string {
	body, err := store.Open(ctx, objectPath)
	if err != nil {
		telemetry.Error("extract.download", map[string]any{"object_path": objectPath, "file": fileName, "error": err.Error()})
		return failureSentinel(fileName)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		telemetry.Error("extract.read", map[string]any{"object_path": objectPath, "file": fileName, "error": err.Error()})
		return failureSentinel(fileName)
	}

	return FromBytes(raw, fileName, mimeType)
}

// FromBytes extracts text from an in-memory payload. Same degraded-output
// contract as ExtractText.
func FromBytes(data []byte, fileName, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	mime := strings.ToLower(strings.TrimSpace(mimeType))

	var (
		text string
		err  error
	)
	switch {
	case ext == "xlsx" || ext == "xls" || strings.Contains(mime, "spreadsheet"):
		text, err = extractWorkbook(data)
	case ext == "docx" || strings.Contains(mime, "wordprocessingml"):
		text, err = extractDOCX(data)
	case ext == "csv" || ext == "txt" || ext == "md" || ext == "json" ||
		strings.Contains(mime, "text/") || strings.Contains(mime, "csv") || strings.Contains(mime, "json"):
		text = string(data)
	case ext == "pdf" || strings.Contains(mime, "pdf"):
		// Best effort: image-only PDFs yield empty text, which is acceptable.
		text, err = extractPDF(data)
	default:
		return unsupportedSentinel(fileName, mime, ext)
	}

	if err != nil {
		telemetry.Error("extract.parse", map[string]any{"file": fileName, "mime": mime, "error": err.Error()})
		return failureSentinel(fileName)
	}
	return text
}

// extractWorkbook renders each non-empty sheet as a CSV block headed by the
// sheet name, in workbook order. Blank rows are suppressed and empty sheets
// omitted.
func extractWorkbook(data []byte) (string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer wb.Close()

	var parts []string
	for _, sheetName := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheetName)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		w := csv.NewWriter(&sb)
		for _, row := range rows {
			if isBlankRow(row) {
				continue
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", err
		}

		if body := strings.TrimSpace(sb.String()); body != "" {
			parts = append(parts, fmt.Sprintf("--- Sheet: %s ---\n%s", sheetName, body))
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func unsupportedSentinel(fileName, mime, ext string) string {
	declared := mime
	if declared == "" {
		declared = ext
	}
	return fmt.Sprintf("[Binary file - content extraction not supported for this format. File: %s, Type: %s]", fileName, declared)
}

func failureSentinel(fileName string) string {
	return fmt.Sprintf("[Failed to extract content from %s]", fileName)
}
