package formatter

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n_%s_\n", report.Title, report.Subtitle)

	for _, s := range report.Sections {
		fmt.Fprintf(&buf, "\n%s %s\n", strings.Repeat("#", s.Level), s.Heading)
		for _, p := range s.Paragraphs {
			if p != "" {
				fmt.Fprintf(&buf, "\n%s\n", p)
			}
		}
		if len(s.Bullets) > 0 {
			buf.WriteString("\n")
			for _, b := range s.Bullets {
				fmt.Fprintf(&buf, "- %s\n", b)
			}
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
