package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// ReportPrinter renders lookup and batch outcomes for the terminal.
type ReportPrinter struct {
	w io.Writer
}

func NewReportPrinter(w io.Writer) *ReportPrinter {
	return &ReportPrinter{w: w}
}

const reportWidth = 58

func (p *ReportPrinter) header(title string) {
	sep := strings.Repeat("═", reportWidth)
	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(p.w, "\033[1;35m  %s\033[0m\n", title)
	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)
}

func (p *ReportPrinter) section(title string) {
	fmt.Fprintf(p.w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(p.w, "  %s\n", strings.Repeat("─", reportWidth))
}

func (p *ReportPrinter) footer() {
	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n\n", strings.Repeat("═", reportWidth))
}

// PrintMarketValue shows the reconciled value and what each source said.
func (p *ReportPrinter) PrintMarketValue(q models.PriceQuery, res models.MarketValueResult, obs []models.SourceObservation) {
	p.header(fmt.Sprintf("MARKET VALUE: %s", truncate(q.GameName, 40)))

	p.section("Query")
	fmt.Fprintf(p.w, "  Platform  : %s\n", q.Platform)
	fmt.Fprintf(p.w, "  Region    : %s\n", q.Region)
	fmt.Fprintf(p.w, "  Condition : %s\n\n", q.Condition)

	p.section("Result")
	if !res.Found() {
		fmt.Fprintf(p.w, "  No market data found\n")
	} else {
		fmt.Fprintf(p.w, "  Market value  : \033[1;32m%s\033[0m\n", FormatAmount(*res.MarketValue, res.Currency))
		fmt.Fprintf(p.w, "  Selling value : \033[1;32m%s\033[0m\n", FormatAmount(*res.SellingValue, res.Currency))
		fmt.Fprintf(p.w, "  Source used   : %s\n", *res.PrioritizedSource)
	}
	fmt.Fprintln(p.w)

	p.section("Sources")
	for _, o := range obs {
		value := "-"
		if o.Found() {
			value = FormatAmount(*o.Value, o.Currency)
		}
		fmt.Fprintf(p.w, "  %-14s %-14s %s\n", o.Source, value, truncate(o.URL, 60))
	}
	p.footer()
}

// PrintObservation shows the price read from a single URL.
func (p *ReportPrinter) PrintObservation(rawURL string, obs models.SourceObservation) {
	p.header("PRICE FROM URL")
	fmt.Fprintf(p.w, "  URL    : %s\n", rawURL)
	fmt.Fprintf(p.w, "  Source : %s\n", obs.Source)
	if obs.Found() {
		fmt.Fprintf(p.w, "  Price  : \033[1;32m%s\033[0m\n", FormatAmount(*obs.Value, obs.Currency))
	} else {
		fmt.Fprintf(p.w, "  Price  : no market data found\n")
	}
	p.footer()
}

// PrintSearch lists every candidate per source.
func (p *ReportPrinter) PrintSearch(q models.PriceQuery, multi models.MultiSearchResult) {
	p.header(fmt.Sprintf("SEARCH: %s (%d results)", truncate(q.GameName, 30), multi.Total()))

	p.printCandidates("PriceCharting", multi.PriceCharting, models.CurrencyUSD)
	p.printCandidates("FINN", multi.Finn, models.CurrencyNOK)

	if multi.Resolved != nil && multi.Resolved.Found() {
		p.section("Single match priced")
		fmt.Fprintf(p.w, "  Market value : \033[1;32m%s\033[0m\n",
			FormatAmount(*multi.Resolved.MarketValue, multi.Resolved.Currency))
	}
	p.footer()
}

func (p *ReportPrinter) printCandidates(title string, results []models.SearchResult, currency string) {
	p.section(title)
	if len(results) == 0 {
		fmt.Fprintf(p.w, "  No results\n\n")
		return
	}
	for i, r := range results {
		price := "-"
		if r.PreviewPrice != nil {
			price = FormatAmount(*r.PreviewPrice, currency)
		}
		fmt.Fprintf(p.w, "  \033[1m%2d.\033[0m %-34s %-18s %s\n", i+1, truncate(r.DisplayName, 34), truncate(r.PlatformLabel, 18), price)
		fmt.Fprintf(p.w, "      %s\n", r.SourceURL)
	}
	fmt.Fprintln(p.w)
}

// PrintBatch summarises a batch run with one line per game.
func (p *ReportPrinter) PrintBatch(s models.BatchSummary) {
	p.header("REFRESH RUN " + s.RunID)

	p.section("Overview")
	fmt.Fprintf(p.w, "  Games     : \033[1m%d\033[0m\n", s.Total)
	fmt.Fprintf(p.w, "  Succeeded : \033[1;32m%d\033[0m\n", s.Succeeded)
	fmt.Fprintf(p.w, "  Failed    : \033[1;31m%d\033[0m\n", s.Failed)
	fmt.Fprintf(p.w, "  Skipped   : %d\n\n", s.Skipped)

	p.section("Games")
	for _, d := range s.Details {
		detail := d.Reason
		if d.Result != nil && d.Result.Found() {
			detail = FormatAmount(*d.Result.MarketValue, d.Result.Currency)
		}
		fmt.Fprintf(p.w, "  %6d  %-30s %-10s %s\n", d.GameID, truncate(d.Name, 30), d.Status, detail)
	}
	p.footer()
}

// FormatAmount renders v in its currency: "$59.99" or "650 kr".
func FormatAmount(v float64, currency string) string {
	switch currency {
	case models.CurrencyNOK:
		return fmt.Sprintf("%.0f kr", v)
	case models.CurrencyUSD:
		return fmt.Sprintf("$%.2f", v)
	default:
		return fmt.Sprintf("%.2f %s", v, currency)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
