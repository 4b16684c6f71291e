package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFontName = "DejaVuSans"

	// The Docker image copies fonts next to the binary.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	for _, p := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(report *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts only cover cp1252.
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.MultiCell(0, 10, tr(report.Title), "", "", false)
	pdf.SetFont(fontName, "I", 11)
	pdf.MultiCell(0, 6, tr(report.Subtitle), "", "", false)

	for _, s := range report.Sections {
		size := 15.0
		if s.Level > 2 {
			size = 12.5
		}
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", size)
		pdf.MultiCell(0, size*0.6, tr(s.Heading), "", "", false)

		pdf.SetFont(fontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		for _, p := range s.Paragraphs {
			if p != "" {
				pdf.MultiCell(0, lineHeight*1.5, tr(p), "", "", false)
			}
		}
		for _, b := range s.Bullets {
			pdf.MultiCell(0, lineHeight*1.5, tr("- "+b), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
