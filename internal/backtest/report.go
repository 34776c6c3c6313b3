package backtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// statAgg accumulates per-stat accuracy over the run.
type statAgg struct {
	count       int
	sumAbsError float64
	withinBand  int
}

// Report aggregates scored rows for one game replay.
type Report struct {
	GameID string

	rows    []Row
	perStat map[string]*statAgg
}

func NewReport(gameID string) *Report {
	return &Report{
		GameID:  gameID,
		perStat: make(map[string]*statAgg),
	}
}

func (r *Report) Add(row Row) {
	r.rows = append(r.rows, row)

	agg, ok := r.perStat[row.Stat]
	if !ok {
		agg = &statAgg{}
		r.perStat[row.Stat] = agg
	}
	agg.count++
	agg.sumAbsError += row.AbsError
	if row.WithinBand {
		agg.withinBand++
	}
}

func (r *Report) Rows() []Row { return r.rows }

// String renders the per-stat summary table.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Backtest %s: %s projections scored\n",
		r.GameID, humanize.Comma(int64(len(r.rows))))

	stats := make([]string, 0, len(r.perStat))
	for st := range r.perStat {
		stats = append(stats, st)
	}
	sort.Strings(stats)

	fmt.Fprintf(&sb, "%-6s %8s %10s %12s\n", "STAT", "N", "MAE", "IN-BAND")
	for _, st := range stats {
		agg := r.perStat[st]
		mae := agg.sumAbsError / float64(agg.count)
		hitRate := float64(agg.withinBand) / float64(agg.count) * 100
		fmt.Fprintf(&sb, "%-6s %8d %10.2f %11.1f%%\n", st, agg.count, mae, hitRate)
	}
	return sb.String()
}

// WorstMisses returns the n rows with the largest absolute error,
// for eyeballing where the model breaks down.
func (r *Report) WorstMisses(n int) []Row {
	rows := make([]Row, len(r.rows))
	copy(rows, r.rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].AbsError > rows[j].AbsError })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
