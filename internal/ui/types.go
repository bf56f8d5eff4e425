package ui

import (
	"fmt"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/DiagSum/internal/ui/components"
)

// View represents different UI views
type View int

const (
	ViewAnalyzing View = iota
	ViewSections
	ViewGroups
	ViewDetail
	ViewHelp
	ViewError
)

// section is one browsable grouping of the analysis
type section struct {
	name   string
	groups []components.Group
}

// sectionsOf lists the record operations followed by the interaction groupings
func sectionsOf(a *analyzer.Analysis) []section {
	sections := []section{
		{name: "Operations", groups: components.GroupsOf(a.Operations, entrySample)},
	}
	for _, s := range a.Groupings.Sections() {
		sections = append(sections, section{name: s.Name, groups: components.GroupsOf(s.Buckets, interactionSample)})
	}
	return sections
}

func entrySample(e *parser.Entry) components.Sample {
	return components.Sample{
		Text:     fmt.Sprintf("L%-6d %10.1f ms  %s", e.LineNumber, e.Duration(), e.Operation()),
		Duration: e.Duration(),
	}
}

func interactionSample(i *network.Interaction) components.Sample {
	text := fmt.Sprintf("L%-6d %10.1f ms  %s %s", i.LineNumber, i.Duration, i.Resource(), i.Status())
	if i.BottleneckPhase != "" {
		text += fmt.Sprintf("  %s %.1f ms", i.BottleneckPhase, i.BottleneckDuration)
	}
	if i.PartitionKeyRangeID != "" {
		text += "  pkr " + i.PartitionKeyRangeID
	}
	return components.Sample{Text: text, Duration: i.Duration}
}
