package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
)

// ReportFiles are the paths written by SaveReport.
type ReportFiles struct {
	Report  string
	Summary string
	Missed  string
}

// SaveReport persists an evaluation report under dir.
//
// Three files are written, named after the report's run id:
//   - report_<id>.json: the full report, curves included.
//   - summary_<id>.csv: one row per class plus a final mAP row.
//   - missed_<id>.txt: every ground-truth object no detection claimed.
//
// Arguments:
//   - dir: The output directory. It is created if needed.
//   - report: The report to save.
//
// Returns:
//   - ReportFiles: The written paths.
//   - error: If any file cannot be written.
func SaveReport(dir string, report *evaluation.Report) (ReportFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ReportFiles{}, errors.Wrap(err, "creating output directory")
	}

	files := ReportFiles{
		Report:  filepath.Join(dir, fmt.Sprintf("report_%s.json", report.RunID)),
		Summary: filepath.Join(dir, fmt.Sprintf("summary_%s.csv", report.RunID)),
		Missed:  filepath.Join(dir, fmt.Sprintf("missed_%s.txt", report.RunID)),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return ReportFiles{}, errors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(files.Report, data, 0o644); err != nil {
		return ReportFiles{}, errors.Wrap(err, "failed to write report file")
	}

	if err := writeTo(files.Summary, func(w io.Writer) error { return WriteSummaryCSV(w, report) }); err != nil {
		return ReportFiles{}, errors.Wrap(err, "failed to save summary CSV")
	}
	if err := writeTo(files.Missed, func(w io.Writer) error { return WriteMissed(w, report) }); err != nil {
		return ReportFiles{}, errors.Wrap(err, "failed to save missed objects")
	}

	return files, nil
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSummaryCSV writes one row per class and a trailing mean AP row.
func WriteSummaryCSV(w io.Writer, report *evaluation.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"class", "status", "ap", "recall", "precision", "tp", "fp", "ignored", "npos"}); err != nil {
		return err
	}

	for _, c := range report.Classes {
		row := []string{
			c.Class,
			string(c.Status),
			formatFloat(c.AP),
			formatFloat(c.FinalRecall),
			formatFloat(c.FinalPrecision),
			strconv.Itoa(c.TruePositives),
			strconv.Itoa(c.FalsePositives),
			strconv.Itoa(c.Ignored),
			strconv.Itoa(c.Positives),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{"mAP", "", formatFloat(report.MeanAP), "", "", "", "", "", ""}); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteMissed lists unclaimed ground truth as `<image> <box> <class>` lines.
func WriteMissed(w io.Writer, report *evaluation.Report) error {
	for _, c := range report.Classes {
		for _, m := range c.Missed {
			if _, err := fmt.Fprintf(w, "%s %s %s\n", m.ImageID, m.Box, m.Class); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTable prints the per-class APs and the mean AP in a human-readable form.
func WriteTable(w io.Writer, report *evaluation.Report) error {
	for _, c := range report.Classes {
		if _, err := fmt.Fprintf(w, "AP for %s = %.4f\n", c.Class, c.AP); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Mean AP = %.4f (%d classes, sentinels %s)\n",
		report.MeanAP, report.ScoredClasses, report.SentinelPolicy)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
