package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/util"
)

const passageWidth = 90

func renderMatches(matches []model.Match) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Chapter", "Offset", "Passage"})
	for i, m := range matches {
		tw.AppendRow(table.Row{i + 1, m.Chapter, strconv.Itoa(m.Offset), util.TruncateRunes(m.Text, 240)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: passageWidth},
	})
	return tw.Render()
}
