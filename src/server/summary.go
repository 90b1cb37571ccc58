package server

import (
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/andrewyi/domaincrawler/src/entity"
)

func renderSummary(w io.Writer, summary entity.RunSummary) {
	results := make([]entity.DomainResult, len(summary.Results))
	copy(results, summary.Results)
	sort.Slice(results, func(i, j int) bool { return results[i].Domain < results[j].Domain })

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Domain", "State", "Recorded", "Skipped", "Write failures", "Remark"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Domain, r.State.String(), r.PagesRecorded, r.PagesSkipped, r.WriteFailures, r.Remark})
	}
	t.AppendFooter(table.Row{
		"total", summaryState(summary), summary.PagesRecorded, summary.PagesSkipped, summary.WriteFailures, "",
	})
	t.Render()
}

func summaryState(summary entity.RunSummary) string {
	s := "done " + strconv.Itoa(summary.DomainsDone) + " / failed " + strconv.Itoa(summary.DomainsFailed)
	if summary.DomainsNotStarted > 0 {
		s += " / not started " + strconv.Itoa(summary.DomainsNotStarted)
	}
	if summary.Interrupted {
		s += " (interrupted)"
	}
	return s
}

func renderDomains(w io.Writer, seeds []entity.Seed) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Domain", "Seed URL"})
	for i, seed := range seeds {
		t.AppendRow(table.Row{i + 1, seed.Domain, seed.URL})
	}
	t.Render()
}
