package main

import (
	"fmt"
	"strconv"

	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderSummary(summary plagiarism.Summary, cache plagiarism.CacheStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "FILE1", "FILE2"})
	tw.AppendRows([]table.Row{
		{"valid tokens", summary.ValidTokens1, summary.ValidTokens2},
		{"matched tokens", summary.MatchedTokens1, summary.MatchedTokens2},
		{"coverage", percent(summary.Coverage1), percent(summary.Coverage2)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"matches", summary.Matches, ""},
		{"similarity", percent(summary.Similarity), ""},
		{"risk", summary.Risk, ""},
		{"cache hits/misses", fmt.Sprintf("%d/%d", cache.Hits, cache.Misses), ""},
		{"cache evictions", strconv.FormatUint(cache.Evictions, 10), ""},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
