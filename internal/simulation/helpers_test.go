package simulation

import (
	"time"

	"grant-simulation/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func obs(permno string, s0, u, sigma float64) model.Observation {
	return model.Observation{
		Key:          model.FirmYear{Permno: permno, FYear: "2010"},
		S0:           s0,
		U:            u,
		Sigma:        sigma,
		S1:           s0,
		Date:         date(2010, time.January, 31),
		GrantDateOpt: date(2010, time.September, 30),
		GrantDateSt:  date(2010, time.June, 30),
	}
}

func panelOf(rows ...model.Observation) *model.Panel {
	return &model.Panel{Observations: rows}
}

// fixedNormals returns the same draw forever.
type fixedNormals float64

func (f fixedNormals) Next() float64 { return float64(f) }

// countingNormals counts draws and returns zero.
type countingNormals struct{ n int }

func (c *countingNormals) Next() float64 {
	c.n++
	return 0
}
