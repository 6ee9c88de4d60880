package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"ratecheck/internal/runner"
	"ratecheck/internal/storage"
)

// Files returns the CSV and summary file names for a scenario.
func Files(prefix string, sc runner.Scenario) (csvFile, summaryFile string) {
	base := prefix + "_" + sc.Name
	return base + ".csv", base + "_summary.json"
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"seq", "timestamp", "status", "success", "rate_limited", "latency_ms", "error"}

// ExportCSV writes one row per request.
func ExportCSV(results []runner.RequestResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{
			strconv.Itoa(res.Seq),
			res.TimeStamp.Format(timeLayout),
			strconv.Itoa(res.Status),
			strconv.FormatBool(res.Success),
			strconv.FormatBool(res.RateLimited),
			strconv.FormatFloat(float64(res.Latency.Microseconds())/1000.0, 'f', 3, 64),
			res.Error,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

type summaryFile struct {
	Scenario runner.Scenario    `json:"scenario"`
	Start    string             `json:"start"`
	End      string             `json:"end"`
	Summary  storage.RunSummary `json:"summary"`
}

// ExportSummary writes the aggregate outcome as indented JSON.
func ExportSummary(out *runner.Outcome, filename string) error {
	data, err := json.MarshalIndent(summaryFile{
		Scenario: out.Scenario,
		Start:    out.Start.Format("2006-01-02T15:04:05.000Z07:00"),
		End:      out.End.Format("2006-01-02T15:04:05.000Z07:00"),
		Summary:  storage.Summarize(out),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// Outcome writes both files for one scenario and returns their names.
func Outcome(prefix string, out *runner.Outcome) ([]string, error) {
	csvFile, sumFile := Files(prefix, out.Scenario)
	if err := ExportCSV(out.Results, csvFile); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	if err := ExportSummary(out, sumFile); err != nil {
		return nil, fmt.Errorf("export summary: %w", err)
	}
	return []string{csvFile, sumFile}, nil
}
