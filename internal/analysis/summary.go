package analysis

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	priceDecimals = 2
	statDecimals  = 5
)

// SummaryHeader is the column order of the coverage summary.
func SummaryHeader() []string {
	return []string{"permno", "fyear", "S0", "S1", "count", "mean", "std", "median", "min", "max", "range", "oor"}
}

// WriteSummaryCSV writes covs to path through a temporary file in the same
// directory, renamed on success, so a failed write leaves no partial file.
func WriteSummaryCSV(path string, covs []Coverage) (err error) {
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

	if err = WriteSummary(f, covs); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// WriteSummary writes one row per coverage. Prices are rounded to 2 decimals
// and statistics to 5.
func WriteSummary(out io.Writer, covs []Coverage) error {
	w := csv.NewWriter(out)
	if err := w.Write(SummaryHeader()); err != nil {
		return err
	}
	for _, c := range covs {
		row := []string{
			c.Key.Permno,
			c.Key.FYear,
			round(c.S0, priceDecimals),
			round(c.S1, priceDecimals),
			strconv.Itoa(c.Count),
			round(c.Mean, statDecimals),
			round(c.Std, statDecimals),
			round(c.Median, statDecimals),
			round(c.Min, statDecimals),
			round(c.Max, statDecimals),
			round(c.Range, statDecimals),
			strconv.Itoa(c.OOR),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// round formats x half away from zero to places decimals. Non-finite values
// print as NaN, +Inf or -Inf.
func round(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return decimal.NewFromFloat(x).Round(places).String()
}
