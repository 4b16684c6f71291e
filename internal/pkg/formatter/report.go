package formatter

import (
	"fmt"
	"strings"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

// Section is one heading with its body. Level 2 is a top-level section,
// level 3 a subsection.
type Section struct {
	Level      int
	Heading    string
	Paragraphs []string
	Bullets    []string
}

// Report is the format-independent content of an export.
type Report struct {
	Title    string
	Subtitle string
	Sections []Section
}

// BuildReport lays out a completed run for project.
func BuildReport(project *entity.Project, run *entity.RunSnapshot) *Report {
	r := &Report{
		Title:    project.Name,
		Subtitle: fmt.Sprintf("%s. Audience: %s", project.Idea, project.Audience),
	}

	r.Sections = append(r.Sections, Section{
		Level:   2,
		Heading: "Scores",
		Bullets: []string{
			fmt.Sprintf("Validation score: %d/100", project.ValidationScore),
			fmt.Sprintf("Execution confidence: %d/100", project.ExecutionConfidence),
		},
	})

	if v := run.Validation; v != nil {
		r.Sections = append(r.Sections,
			Section{
				Level:      2,
				Heading:    "Validation",
				Paragraphs: []string{fmt.Sprintf("Investability score: %d/100", v.InvestabilityScore), v.Summary},
			},
			Section{Level: 3, Heading: "Strengths", Bullets: v.SWOT.Strengths},
			Section{Level: 3, Heading: "Weaknesses", Bullets: v.SWOT.Weaknesses},
			Section{Level: 3, Heading: "Opportunities", Bullets: v.SWOT.Opportunities},
			Section{Level: 3, Heading: "Threats", Bullets: v.SWOT.Threats},
			Section{Level: 3, Heading: "Risks", Bullets: v.Risks},
		)

		competitors := make([]string, 0, len(v.Competitors))
		for _, c := range v.Competitors {
			competitors = append(competitors, fmt.Sprintf("%s: %s (advantage: %s)", c.Name, c.Positioning, c.Advantage))
		}
		r.Sections = append(r.Sections, Section{Level: 3, Heading: "Competitors", Bullets: competitors})
	}

	if rm := run.Roadmap; rm != nil {
		roadmap := Section{Level: 2, Heading: "Roadmap"}
		if rm.StrategicSummary != nil && strings.TrimSpace(*rm.StrategicSummary) != "" {
			roadmap.Paragraphs = []string{*rm.StrategicSummary}
		}
		r.Sections = append(r.Sections,
			roadmap,
			phaseSection("Week 1", rm.Week1),
			phaseSection("Month 1", rm.Month1),
			phaseSection("Quarter 1", rm.Quarter1),
			Section{Level: 3, Heading: "Suggested tech stack", Bullets: rm.SuggestedTechStack},
			Section{Level: 3, Heading: "Risks to watch", Bullets: rm.RisksToWatch},
		)
	}

	if c := run.Copy; c != nil {
		r.Sections = append(r.Sections,
			Section{
				Level:      2,
				Heading:    "Landing page",
				Paragraphs: []string{c.HeroHeadline, c.Subheadline, "Call to action: " + c.CTA},
				Bullets:    c.ValueProps,
			},
			Section{Level: 3, Heading: "Pitch script", Paragraphs: []string{c.PitchScript}},
		)
	}

	return r
}

func phaseSection(name string, p entity.RoadmapPhase) Section {
	var bullets []string
	for _, g := range p.Goals {
		bullets = append(bullets, "Goal: "+g)
	}
	for _, f := range p.Features {
		bullets = append(bullets, "Feature: "+f)
	}
	for _, m := range p.SuccessMetrics {
		bullets = append(bullets, "Metric: "+m)
	}
	return Section{Level: 3, Heading: name, Bullets: bullets}
}
