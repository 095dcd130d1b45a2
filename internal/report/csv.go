package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maryakemi70/HY4RES-WP2/internal/compare"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// WriteBalanceCSV writes one row per balance record.
func WriteBalanceCSV(w io.Writer, records []model.BalanceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(balanceHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(balanceRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIndicatorCSV writes the daily table of one indicator.
func WriteIndicatorCSV(w io.Writer, rows []model.IndicatorDailyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(indicatorHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(indicatorRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSV writes one row of comparative metrics per indicator.
func WriteMetricsCSV(w io.Writer, metrics []compare.Metrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metricsHeader); err != nil {
		return err
	}
	for _, m := range metrics {
		if err := cw.Write(metricsRow(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes balance.csv, metrics.csv and one <indicator>.csv per
// indicator into dir, creating it if needed. It returns the written paths.
func WriteDir(dir string, r Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var paths []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	}

	if err := write("balance.csv", func(w io.Writer) error { return WriteBalanceCSV(w, r.Balance) }); err != nil {
		return paths, err
	}
	for _, ind := range r.Indicators {
		rows := r.Tables[ind]
		if err := write(string(ind)+".csv", func(w io.Writer) error { return WriteIndicatorCSV(w, rows) }); err != nil {
			return paths, err
		}
	}
	if err := write("metrics.csv", func(w io.Writer) error { return WriteMetricsCSV(w, r.Metrics) }); err != nil {
		return paths, err
	}
	return paths, nil
}
