package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	addStyled(doc, "Title", report.Title)
	addStyled(doc, "Subtitle", report.Subtitle)

	for _, s := range report.Sections {
		style := "Heading1"
		if s.Level > 2 {
			style = "Heading2"
		}
		addStyled(doc, style, s.Heading)

		for _, p := range s.Paragraphs {
			if p != "" {
				doc.AddParagraph().AddRun().AddText(p)
			}
		}
		for _, b := range s.Bullets {
			doc.AddParagraph().AddRun().AddText("• " + b)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addStyled(doc *document.Document, style, text string) {
	par := doc.AddParagraph()
	par.SetStyle(style)
	par.AddRun().AddText(text)
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
