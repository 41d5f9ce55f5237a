package services

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"meli-trends/models"
	"meli-trends/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(result *models.RankResult) *models.InsightReport {
	report := &models.InsightReport{}
	if result == nil {
		return report
	}

	report.RawRows = result.Stats.RawRows
	report.ValidRows = result.Stats.Valid
	report.Rejected = result.Stats.Rejected
	report.Malformed = result.Stats.Malformed
	report.Clustering = result.Clustering
	report.Clusters = result.Clusters
	report.FallbackUsed = result.FallbackUsed
	report.Selected = result.Listings

	if len(result.Valid) == 0 {
		return report
	}

	// Valid listings always have a positive price.
	report.MinPrice = result.Valid[0].Price
	report.MaxPrice = result.Valid[0].Price
	report.Cheapest = result.Valid[0]
	var total float64
	for _, l := range result.Valid {
		total += l.Price
		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
			report.Cheapest = l
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
		}
	}
	report.AveragePrice = round2(total / float64(len(result.Valid)))
	report.MinPrice = round2(report.MinPrice)
	report.MaxPrice = round2(report.MaxPrice)

	return report
}

// Print writes the run summary and the selected listings as tables.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	overview := table.NewWriter()
	overview.SetOutputMirror(w)
	overview.SetTitle("MERCADOLIBRE TRENDS · RUN SUMMARY")
	overview.SetStyle(table.StyleRounded)
	overview.AppendRows([]table.Row{
		{"Raw rows", r.RawRows},
		{"Valid listings", r.ValidRows},
		{"Rejected", r.Rejected},
		{"Malformed", r.Malformed},
		{"Clustering", fmt.Sprintf("%s (%d clusters)", r.Clustering, r.Clusters)},
		{"Fallback selection", r.FallbackUsed},
	})
	if r.ValidRows > 0 {
		overview.AppendSeparator()
		overview.AppendRows([]table.Row{
			{"Average price", fmt.Sprintf("Bs. %.2f", r.AveragePrice)},
			{"Minimum price", fmt.Sprintf("Bs. %.2f", r.MinPrice)},
			{"Maximum price", fmt.Sprintf("Bs. %.2f", r.MaxPrice)},
		})
	}
	overview.Render()

	if len(r.Selected) == 0 {
		fmt.Fprintln(w, "  No listings selected")
		return
	}

	top := table.NewWriter()
	top.SetOutputMirror(w)
	top.SetTitle(fmt.Sprintf("TOP %d", len(r.Selected)))
	top.SetStyle(table.StyleRounded)
	top.AppendHeader(table.Row{"#", "Title", "Price", "Popularity", "Cluster"})
	for i, l := range r.Selected {
		top.AppendRow(table.Row{i + 1, truncate(l.Title, 48), fmt.Sprintf("%.2f", l.Price),
			fmt.Sprintf("%.1f", l.PopularityScore), l.ClusterID})
	}
	top.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	top.Render()
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
