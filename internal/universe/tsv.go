package universe

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// readTSVRows parses the tab-separated listed-issues file, skipping the
// header row. A Shift_JIS file is decoded before parsing.
func readTSVRows(path string, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "universe: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
	case "shift_jis", "shift-jis", "sjis":
		r = transform.NewReader(f, japanese.ShiftJIS.NewDecoder())
	default:
		return nil, eris.Errorf("universe: unsupported encoding %q", encoding)
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "universe: read tsv row")
		}
		if first {
			first = false // header row
			continue
		}
		rows = append(rows, record)
	}

	return rows, nil
}
