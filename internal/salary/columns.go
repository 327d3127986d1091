package salary

// Columns is the flat storage shape of a salary record. Nil means NULL.
type Columns struct {
	SalaryMin      *float64 `json:"salary_min"`
	SalaryMax      *float64 `json:"salary_max"`
	SalaryCurrency *string  `json:"salary_currency"`
	SalaryPeriod   *string  `json:"salary_period"`
	SalaryRange    *string  `json:"salary_range"`
	HourlyRate     *float64 `json:"hourly_rate"`
}

// Columns flattens d for storage. Hourly pay also fills HourlyRate with
// the lower bound, or the upper one when only that is known. A nil
// receiver yields all-NULL columns.
func (d *Details) Columns() Columns {
	if d == nil {
		return Columns{}
	}
	c := Columns{
		SalaryMin:      d.Min,
		SalaryMax:      d.Max,
		SalaryCurrency: optString(d.Currency),
		SalaryPeriod:   optString(string(d.Period)),
		SalaryRange:    optString(d.Range),
	}
	if d.Period == Hour {
		if d.Min != nil {
			c.HourlyRate = d.Min
		} else {
			c.HourlyRate = d.Max
		}
	}
	return c
}

// FromColumns rebuilds a normalized record from stored columns. Rows that
// only carry hourly_rate are read as hourly pay.
func FromColumns(c Columns) *Details {
	in := &Input{
		Range:    deref(c.SalaryRange),
		Min:      Amount{Number: c.SalaryMin},
		Max:      Amount{Number: c.SalaryMax},
		Currency: deref(c.SalaryCurrency),
		Period:   deref(c.SalaryPeriod),
	}
	if c.HourlyRate != nil {
		if in.Period == "" {
			in.Period = string(Hour)
		}
		if c.SalaryMin == nil && c.SalaryMax == nil {
			in.Min = Amount{Number: c.HourlyRate}
		}
	}
	return Normalize(in)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
