package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// filenameLayout stamps output files down to the second so repeated
// runs never clobber each other.
const filenameLayout = "20060102_150405"

// WriteCSV writes records to <outputDir>/stock_data_<timestamp>.csv and
// returns the path. The output directory is created if missing.
func WriteCSV(records []model.Record, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create output dir %s", outputDir)
	}

	path := filepath.Join(outputDir, "stock_data_"+now.Format(filenameLayout)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cols := Columns()
	w := csv.NewWriter(f)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return "", eris.Wrap(err, "export: write header")
	}

	row := make([]string, len(cols))
	for i := range records {
		for j, c := range cols {
			row[j] = c.Value(&records[i])
		}
		if err := w.Write(row); err != nil {
			return "", eris.Wrapf(err, "export: write row %d", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "export: flush")
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "export: close %s", path)
	}
	return path, nil
}
