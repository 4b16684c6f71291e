package formatter

import (
	"bytes"
	"testing"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	summary := "Start narrow."
	return BuildReport(
		&entity.Project{
			Name:                "Acme",
			Idea:                "Acme: invoicing for agencies",
			Audience:            "agencies",
			ValidationScore:     81,
			ExecutionConfidence: 77,
		},
		&entity.RunSnapshot{
			Status: entity.RunStatusCompleted,
			Validation: &entity.ValidationResponse{
				InvestabilityScore: 72,
				Summary:            "Solid wedge.",
				SWOT:               entity.SWOT{Strengths: []string{"Focus"}},
				Competitors:        []entity.Competitor{{Name: "Incumbent", Positioning: "Suite", Advantage: "Reach"}},
			},
			Roadmap: &entity.RoadmapResponse{
				StrategicSummary: &summary,
				Week1:            entity.RoadmapPhase{Goals: []string{"Interview users"}},
			},
			Copy: &entity.CopyResponse{
				HeroHeadline: "Get paid faster",
				ValueProps:   []string{"No spreadsheets"},
				CTA:          "Join",
				PitchScript:  "We help agencies.",
			},
		},
	)
}

func TestBuildReportSections(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, "Acme", r.Title)
	headings := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		headings = append(headings, s.Heading)
	}
	assert.Equal(t, []string{
		"Scores", "Validation", "Strengths", "Weaknesses", "Opportunities", "Threats", "Risks", "Competitors",
		"Roadmap", "Week 1", "Month 1", "Quarter 1", "Suggested tech stack", "Risks to watch",
		"Landing page", "Pitch script",
	}, headings)
	assert.Equal(t, []string{"Goal: Interview users"}, r.Sections[9].Bullets)
	assert.Equal(t, []string{"Incumbent: Suite (advantage: Reach)"}, r.Sections[7].Bullets)
}

func TestBuildReportSkipsMissingStages(t *testing.T) {
	r := BuildReport(&entity.Project{Name: "X"}, &entity.RunSnapshot{})
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "Scores", r.Sections[0].Heading)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleReport())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Acme\n")
	assert.Contains(t, md, "## Validation\n")
	assert.Contains(t, md, "### Week 1\n\n- Goal: Interview users\n")
	assert.Contains(t, md, "- Validation score: 81/100\n")
}

func TestPDFFormatter(t *testing.T) {
	f, err := NewFactory().Create(entity.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", f.FileExtension())

	out, err := f.Format(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFactoryFileExtensions(t *testing.T) {
	for format, ext := range map[entity.ResultFormat]string{
		entity.FormatMarkdown: ".md",
		entity.FormatDOCX:     ".docx",
		entity.FormatPDF:      ".pdf",
	} {
		f, err := NewFactory().Create(format)
		require.NoError(t, err)
		assert.Equal(t, ext, f.FileExtension())
	}
}

func TestFactoryRejectsUnknownFormat(t *testing.T) {
	_, err := NewFactory().Create("rtf")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "My_Stealth_Startup", FileName("My Stealth Startup"))
	assert.Equal(t, "results", FileName("!!!"))
}
