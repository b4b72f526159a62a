package simulation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"grant-simulation/internal/model"
)

// WriteTableCSV writes tbl to path. The file is written next to path under a
// temporary name and renamed on success, so a failed write leaves no output.
func WriteTableCSV(path string, tbl *Table, layouts DateLayouts) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = WriteTable(f, tbl, layouts); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// WriteTable writes the header and every row of tbl. Input columns come
// first with dates normalized to layouts, then the extract columns, then the
// valuation columns when the table has been valued.
func WriteTable(out io.Writer, tbl *Table, layouts DateLayouts) error {
	layouts = layouts.withDefaults()
	w := csv.NewWriter(out)

	inputCols := tbl.Panel.OutputColumns()
	header := append([]string{}, inputCols...)
	header = append(header, Names(tbl.Schema.ExtractColumns())...)
	if tbl.Valued() {
		header = append(header, Names(tbl.Schema.ValuationColumns())...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for row := 0; row < tbl.Rows(); row++ {
		obs := tbl.Observation(row)
		record = record[:0]
		for i, col := range inputCols {
			record = append(record, inputCell(obs, i, col, layouts))
		}
		for _, v := range tbl.ExtractRow(row) {
			record = append(record, fmtFloat(v))
		}
		if tbl.Valued() {
			for _, v := range tbl.ValuationRow(row) {
				record = append(record, fmtFloat(v))
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("row %s: %w", obs.Key, err)
		}
	}

	w.Flush()
	return w.Error()
}

func inputCell(obs *model.Observation, idx int, col string, layouts DateLayouts) string {
	switch col {
	case model.ColDate:
		return fmtDate(obs.Date, layouts.BaseDate)
	case model.ColGrantDateOpt:
		return fmtDate(obs.GrantDateOpt, layouts.GrantDate)
	case model.ColGrantDateSt:
		return fmtDate(obs.GrantDateSt, layouts.GrantDate)
	}
	if idx < len(obs.Values) {
		return obs.Values[idx]
	}
	switch col {
	case model.ColPermno:
		return obs.Key.Permno
	case model.ColFYear:
		return obs.Key.FYear
	case model.ColS0:
		return fmtFloat(obs.S0)
	case model.ColU:
		return fmtFloat(obs.U)
	case model.ColSigma:
		return fmtFloat(obs.Sigma)
	case model.ColS1:
		return fmtFloat(obs.S1)
	}
	return ""
}

func fmtDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// fmtFloat uses the shortest representation that round-trips, so identical
// runs produce byte-identical files. Sentinels print as NaN and +Inf.
func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
