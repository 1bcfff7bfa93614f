package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/teamcity"
	"github.com/imamik/tcstack/internal/util/labels"
)

// Colors matching internal/ui/tui/styles.go palette.
var (
	outColorGreen = lipgloss.Color("#22c55e")
	outColorRed   = lipgloss.Color("#ef4444")
	outColorBlue  = lipgloss.Color("#3b82f6")
	outColorDim   = lipgloss.Color("#6b7280")
	outColorWhite = lipgloss.Color("#f9fafb")
)

var (
	outTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(outColorWhite)

	outSectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(outColorBlue)

	outDimStyle = lipgloss.NewStyle().
			Foreground(outColorDim)

	outGreenStyle = lipgloss.NewStyle().
			Foreground(outColorGreen)

	outRedStyle = lipgloss.NewStyle().
			Foreground(outColorRed)
)

// renderPlan produces a lipgloss-styled list of the graph's stages. Nodes
// in the same stage run concurrently.
func renderPlan(mode, stack string, g *provisioning.Graph, levels [][]string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(outTitleStyle.Render(fmt.Sprintf("  tcstack %s plan: %s", mode, stack)))
	b.WriteString("\n")
	b.WriteString(outDimStyle.Render(fmt.Sprintf("  %d nodes in %d stages", g.Len(), len(levels))))
	b.WriteString("\n")

	for i, ids := range levels {
		b.WriteString("\n")
		b.WriteString(outSectionStyle.Render(fmt.Sprintf("  Stage %d", i+1)))
		b.WriteString("\n")
		for _, id := range ids {
			n, _ := g.Node(id)
			fmt.Fprintf(&b, "    %-40s", id)
			if len(n.DependsOn) > 0 {
				b.WriteString(outDimStyle.Render(" <- " + strings.Join(n.DependsOn, ", ")))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderApplySummary lists where each TeamCity server was deployed.
func renderApplySummary(cfg *config.Config, result *provisioning.Result) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(outGreenStyle.Render(fmt.Sprintf("  Stack %s applied", cfg.Name)))
	b.WriteString(outDimStyle.Render(fmt.Sprintf(" (%d nodes in %s)", len(result.Nodes), result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	if ep, ok := result.Handle(teamcity.EndpointID); ok {
		b.WriteString("\n")
		b.WriteString(outSectionStyle.Render("  PostgreSQL"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "    %s:%s\n", ep.Output(teamcity.OutHost), ep.Output(teamcity.OutPort))
	}

	b.WriteString("\n")
	b.WriteString(outSectionStyle.Render("  TeamCity"))
	b.WriteString("\n")
	for _, inst := range cfg.Instances {
		ids := teamcity.IDsFor(inst.Name)
		rel, ok := result.Handle(ids.Release)
		if !ok {
			continue
		}
		grant, _ := result.Handle(ids.Grant)
		fmt.Fprintf(&b, "    %-20s namespace=%s port=%s revision=%s database=%s\n",
			inst.Name,
			rel.Output(teamcity.OutNamespace),
			rel.Output(teamcity.OutPort),
			rel.Output(teamcity.OutRevision),
			grant.Output(teamcity.OutDatabase))
	}

	b.WriteString("\n")
	b.WriteString(outDimStyle.Render("  kubectl get all -A -l " + labels.SelectorForStack(cfg.Name)))
	b.WriteString("\n")

	return b.String()
}

// renderFailures lists failed nodes and how many were skipped because of them.
func renderFailures(result *provisioning.Result) string {
	var b strings.Builder

	for _, id := range result.WithStatus(provisioning.StatusFailed) {
		fmt.Fprintf(&b, "  %s %s: %v\n", outRedStyle.Render("[!!]"), id, result.Nodes[id].Err)
	}
	if skipped := result.Count(provisioning.StatusSkipped); skipped > 0 {
		b.WriteString(outDimStyle.Render(fmt.Sprintf("  %d nodes skipped", skipped)))
		b.WriteString("\n")
	}
	return b.String()
}

func printApplySummary(cfg *config.Config, result *provisioning.Result) {
	fmt.Print(renderApplySummary(cfg, result))
}

func printFailures(result *provisioning.Result) {
	fmt.Print(renderFailures(result))
}
