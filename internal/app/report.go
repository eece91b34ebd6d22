package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.trai.ch/kcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/core/domain"
)

// Report summarizes a replay.
type Report struct {
	Config   domain.Config
	Calls    int
	Patterns int
	Elapsed  time.Duration
	Workers  []domain.WorkerStats
	Total    domain.WorkerStats
	Timings  []telemetry.CompileTiming
}

// Render writes the report as plain tables.
func (r *Report) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"replayed %d calls over %d patterns on %d workers in %s (capacity %d, policy %s, routing %s)\n\n",
		r.Calls, r.Patterns, len(r.Workers), r.Elapsed.Round(time.Microsecond),
		r.Config.Capacity, r.Config.DuplicatePolicy, r.Config.Routing,
	)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(r.Workers)+1)
	for _, s := range r.Workers {
		rows = append(rows, workerRow(strconv.Itoa(s.Worker), s))
	}
	rows = append(rows, workerRow("total", r.Total))
	renderTable(w, []string{
		"WORKER", "CALLS", "FAILED", "PART HITS", "PART MISSES", "PARTITIONS",
		"KERNEL HITS", "KERNEL MISSES", "COMPILES", "EVICTIONS", "KERNELS",
	}, rows)

	if len(r.Timings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	rows = rows[:0]
	for _, t := range r.Timings {
		rows = append(rows, []string{
			strconv.FormatInt(t.PatternID, 10),
			strconv.Itoa(t.Compiles),
			strconv.Itoa(t.Failures),
			t.Mean().Round(time.Microsecond).String(),
			t.Max.Round(time.Microsecond).String(),
		})
	}
	renderTable(w, []string{"PATTERN", "COMPILES", "FAILURES", "MEAN", "MAX"}, rows)
	return nil
}

func workerRow(label string, s domain.WorkerStats) []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	return []string{
		label,
		u(s.Calls),
		u(s.Failures),
		u(s.PartitionHits),
		u(s.PartitionMisses),
		strconv.Itoa(s.Partitions),
		u(s.Kernels.Hits),
		u(s.Kernels.Misses),
		u(s.Compiles),
		u(s.Kernels.Evictions),
		strconv.Itoa(s.Kernels.Len),
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
}
