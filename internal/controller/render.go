package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

const (
	kindIndividual = "individual"
	kindRange      = "range"
)

func renderSummaryTable(report m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Run", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	table.AppendBulk([][]string{
		{"id", report.RunID},
		{"decider", report.Decider},
		{"good profile", string(report.Good)},
		{"bad profile", string(report.Bad)},
		{"format", string(report.Format)},
		{"seed", fmt.Sprintf("%d", report.Seed)},
		{"common components", fmt.Sprintf("%d", report.CommonComponents)},
		{"oracle calls", fmt.Sprintf("%d", report.OracleCalls)},
		{"verdicts", formatVerdicts(report.Verdicts)},
		{"duration", formatSeconds(report.DurationSeconds)},
		{"good-only components fix bad", formatBool(report.GoodOnlyFunctions)},
		{"bad-only components break good", formatBool(report.BadOnlyFunctions)},
	})

	table.Render()

	return tableBuffer.String()
}

func renderCulpritTable(result m.Result) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Kind", "Components"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, individual := range result.Individuals {
		table.Append([]string{kindIndividual, string(individual)})
	}

	for _, culprits := range result.Ranges {
		table.Append([]string{kindRange, joinComponents(culprits)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(result.Individuals)+len(result.Ranges)),
		fmt.Sprintf("%d individual, %d range", len(result.Individuals), len(result.Ranges)),
	})

	table.Render()

	return tableBuffer.String()
}

func renderCheckTable(report m.CheckReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Check", "Result"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	table.AppendBulk([][]string{
		{"good profile", report.GoodVerdict.String()},
		{"bad profile", report.BadVerdict.String()},
		{"common components", fmt.Sprintf("%d", report.CommonComponents)},
		{"good-only components", fmt.Sprintf("%d", report.GoodOnly)},
		{"bad-only components", fmt.Sprintf("%d", report.BadOnly)},
		{"good-only components fix bad", formatBool(report.GoodOnlyFunctions)},
		{"bad-only components break good", formatBool(report.BadOnlyFunctions)},
	})

	table.Render()

	return tableBuffer.String()
}

func joinComponents(components []m.Component) string {
	names := make([]string, len(components))
	for i, component := range components {
		names[i] = string(component)
	}

	return strings.Join(names, ", ")
}

func formatVerdicts(verdicts map[string]int) string {
	if len(verdicts) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(verdicts))
	for key := range verdicts {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s=%d", key, verdicts[key])
	}

	return strings.Join(parts, " ")
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
