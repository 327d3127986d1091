package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		v        *float64
		currency string
		want     string
	}{
		{"usd", ptr(120000), "USD", "$120,000"},
		{"nil", nil, "USD", ""},
		{"code suffix", ptr(120000), "CHF", "120,000 CHF"},
		{"cents", ptr(45.5), "GBP", "£45.50"},
		{"no currency", ptr(1000), "", "1,000"},
		{"lowercase code", ptr(75000), "eur", "€75,000"},
		{"prefixed dollar", ptr(90000), "CAD", "CA$90,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.v, tt.currency))
		})
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		name string
		d    *Details
		want string
	}{
		{"nil", nil, ""},
		{"no bounds", &Details{Range: "Competitive"}, ""},
		{"both", &Details{Min: ptr(120000), Max: ptr(150000), Currency: "USD", Period: Year}, "$120,000 - $150,000 per year"},
		{"min only", &Details{Min: ptr(50000), Currency: "USD", Period: Year}, "From $50,000 per year"},
		{"max only", &Details{Max: ptr(55000), Currency: "GBP"}, "Up to £55,000"},
		{"equal bounds", &Details{Min: ptr(85000), Max: ptr(85000), Currency: "USD", Period: Year}, "$85,000 per year"},
		{"hourly", &Details{Min: ptr(40), Max: ptr(55.5), Currency: "USD", Period: Hour}, "$40 - $55.50 per hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRange(tt.d))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, NotProvided, Label(nil))
	assert.Equal(t, "$100k+", Label(&Details{Range: "$100k+", Min: ptr(100000)}))
	assert.Equal(t, "Up to $70,000", Label(&Details{Max: ptr(70000), Currency: "USD"}))
	assert.Equal(t, NotProvided, Label(&Details{Currency: "USD"}))
}

func TestColumns_Hourly(t *testing.T) {
	d := Normalize(&Input{Min: Num(40), Max: Num(55), Currency: "USD", Period: "hour"})
	c := d.Columns()
	require.NotNil(t, c.HourlyRate)
	assert.Equal(t, 40.0, *c.HourlyRate)
	require.NotNil(t, c.SalaryPeriod)
	assert.Equal(t, "hour", *c.SalaryPeriod)

	maxOnly := Normalize(&Input{Max: Num(30), Period: "hourly"}).Columns()
	require.NotNil(t, maxOnly.HourlyRate)
	assert.Equal(t, 30.0, *maxOnly.HourlyRate)
}

func TestColumns_YearlyHasNoHourlyRate(t *testing.T) {
	c := Normalize(&Input{Min: Num(90000), Currency: "USD", Period: "year"}).Columns()
	assert.Nil(t, c.HourlyRate)
	assert.Nil(t, c.SalaryMax)
}

func TestColumns_NilDetails(t *testing.T) {
	var d *Details
	assert.Equal(t, Columns{}, d.Columns())
	assert.Nil(t, FromColumns(Columns{}))
}

func TestFromColumns_RoundTrip(t *testing.T) {
	for _, in := range normalizeCases() {
		d := Normalize(in)
		assert.Equal(t, d, FromColumns(d.Columns()))
	}
}

func TestFromColumns_HourlyRateOnly(t *testing.T) {
	d := FromColumns(Columns{HourlyRate: ptr(35)})
	require.NotNil(t, d)
	assert.Equal(t, Hour, d.Period)
	assert.Equal(t, ptr(35), d.Min)
	assert.Equal(t, "From 35 per hour", d.Range)
}
