package model

// Input column names. Keep these stable; they are the CSV contract with the
// ingestion and persistence collaborators.
const (
	ColPermno       = "permno"
	ColFYear        = "fyear"
	ColS0           = "S0"
	ColU            = "u"
	ColSigma        = "sigma"
	ColDate         = "date"
	ColGrantDateOpt = "grantdate_opt"
	ColGrantDateSt  = "grantdate_st"
	ColS1           = "S1"

	ColPrediction = "prediction"
	ColT          = "T"
	ColR          = "r"
	ColD          = "d"
)

// RequiredColumns lists the observation columns that must be present.
func RequiredColumns() []string {
	return []string{
		ColPermno,
		ColFYear,
		ColS0,
		ColU,
		ColSigma,
		ColDate,
		ColGrantDateOpt,
		ColGrantDateSt,
		ColS1,
	}
}

// PredictionColumns lists the columns a predictions file must carry.
// sigma is optional there.
func PredictionColumns() []string {
	return []string{ColPermno, ColFYear, ColPrediction, ColT, ColR, ColD}
}
