package salary

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Absent(t *testing.T) {
	tests := []struct {
		name string
		in   *Input
	}{
		{"nil", nil},
		{"empty", &Input{}},
		{"currency only", &Input{Currency: "USD"}},
		{"period only", &Input{Period: "year"}},
		{"placeholders", &Input{Range: "Not provided", Min: Text("Not provided"), Max: Text("N/A")}},
		{"non-positive bounds", &Input{Min: Num(0), Max: Num(-5)}},
		{"non-finite bound", &Input{Max: Num(math.Inf(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Normalize(tt.in)
			assert.Nil(t, d)
			assert.Equal(t, "", FormatRange(d))
			assert.Equal(t, NotProvided, Label(d))
		})
	}
}

func TestNormalize_CoercesAndCanonicalizes(t *testing.T) {
	d := Normalize(&Input{
		Min:      Text("150k"),
		Max:      Num(120000),
		Currency: "usd",
		Period:   "Annually",
	})
	require.NotNil(t, d)
	assert.Equal(t, ptr(120000), d.Min)
	assert.Equal(t, ptr(150000), d.Max)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, Year, d.Period)
	assert.Equal(t, "$120,000 - $150,000 per year", d.Range)
}

func TestNormalize_UnknownVocabularyDropped(t *testing.T) {
	d := Normalize(&Input{Min: Num(50000), Currency: "XYZ", Period: "fortnight"})
	require.NotNil(t, d)
	assert.Equal(t, "", d.Currency)
	assert.Equal(t, Period(""), d.Period)
	assert.Equal(t, "From 50,000", d.Range)
}

func TestNormalize_CurrencyAliases(t *testing.T) {
	for in, want := range map[string]string{"$": "USD", "£": "GBP", "euros": "EUR", "cad": "CAD"} {
		d := Normalize(&Input{Min: Num(1000), Currency: in})
		require.NotNil(t, d, in)
		assert.Equal(t, want, d.Currency, in)
	}
}

func TestNormalize_BoundsFromRangeText(t *testing.T) {
	d := Normalize(&Input{Range: "$60 - $75 per hour"})
	require.NotNil(t, d)
	assert.Equal(t, ptr(60), d.Min)
	assert.Equal(t, ptr(75), d.Max)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, Hour, d.Period)
	assert.Equal(t, "$60 - $75 per hour", d.Range)
}

func TestNormalize_InfersFromRangeWhenBoundsGiven(t *testing.T) {
	d := Normalize(&Input{Range: "£40k–£50k a year", Min: Num(40000), Max: Num(50000)})
	require.NotNil(t, d)
	assert.Equal(t, "GBP", d.Currency)
	assert.Equal(t, Year, d.Period)
}

func TestNormalize_FreeTextRangeKept(t *testing.T) {
	d := Normalize(&Input{Range: "Competitive"})
	require.NotNil(t, d)
	assert.Equal(t, "Competitive", d.Range)
	assert.Nil(t, d.Min)
	assert.Nil(t, d.Max)
	assert.Equal(t, "Competitive", Label(d))
}

func TestNormalize_RoundsToCents(t *testing.T) {
	d := Normalize(&Input{Min: Num(45.678)})
	require.NotNil(t, d)
	assert.Equal(t, ptr(45.68), d.Min)
}

func normalizeCases() []*Input {
	return []*Input{
		nil,
		{},
		{Min: Num(120000), Max: Num(150000), Currency: "USD", Period: "year"},
		{Min: Num(150000), Max: Num(120000)},
		{Min: Text("$200k"), Max: Text("90,000"), Currency: "£"},
		{Range: "$60 - $75 per hour"},
		{Range: "up to €70,000 annually"},
		{Range: "Competitive", Currency: "usd"},
		{Max: Num(33.333), Period: "hr"},
		{Min: Text("Not provided"), Range: "Not provided"},
		{Min: Num(10), Max: Num(10), Currency: "CHF", Period: "monthly"},
		{Min: Num(0.001)},
		{Min: Num(0.004), Max: Num(12), Currency: "USD"},
		{Min: Text("0.001"), Range: "tiny"},
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range normalizeCases() {
		once := Normalize(in)
		twice := Normalize(once.Input())
		assert.Equal(t, once, twice)
	}
}

func TestNormalize_SubCentBoundDropped(t *testing.T) {
	assert.Nil(t, Normalize(&Input{Min: Num(0.001)}))

	d := Normalize(&Input{Min: Num(0.004), Max: Num(12), Currency: "USD"})
	require.NotNil(t, d)
	assert.Nil(t, d.Min)
	assert.Equal(t, ptr(12), d.Max)
}

func TestNormalize_MinNeverExceedsMax(t *testing.T) {
	for _, in := range normalizeCases() {
		d := Normalize(in)
		if d == nil || d.Min == nil || d.Max == nil {
			continue
		}
		assert.LessOrEqual(t, *d.Min, *d.Max)
	}
}

func TestNormalize_WellFormedRoundTrip(t *testing.T) {
	d := Normalize(&Input{Min: Num(120000), Max: Num(150000), Currency: "USD", Period: "year"})
	got := FormatRange(d)
	assert.Contains(t, got, "$120,000")
	assert.Contains(t, got, "$150,000")
	assert.Contains(t, got, "year")
}

func TestParseInput_Lenient(t *testing.T) {
	in, err := ParseInput([]byte(`{"range":"$120k - $150k per year","min":"120000","max":150000,"currency":5,"period":"year","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "120000", in.Min.Text)
	require.NotNil(t, in.Max.Number)
	assert.Equal(t, 150000.0, *in.Max.Number)
	assert.Equal(t, "", in.Currency)

	d := Normalize(in)
	require.NotNil(t, d)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, ptr(120000), d.Min)
}

func TestParseInput_RepeatedFields(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		min, max *float64
		period   string
	}{
		{"canonical beats alias", `{"minimum":1,"min":2,"maximum":9,"max":8}`, ptr(2), ptr(8), ""},
		{"canonical beats case variant", `{"Min":3,"min":2,"MAX":7,"max":8}`, ptr(2), ptr(8), ""},
		{"case variant beats alias", `{"minimum":1,"Min":3,"interval":"week","Period":"year"}`, ptr(3), nil, "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 20 {
				in, err := ParseInput([]byte(tt.payload))
				require.NoError(t, err)
				assert.Equal(t, tt.min, in.Min.Number)
				assert.Equal(t, tt.max, in.Max.Number)
				assert.Equal(t, tt.period, in.Period)
			}
		})
	}
}

func TestParseInput_NullsAndMalformed(t *testing.T) {
	in, err := ParseInput([]byte(`{"range":null,"min":null,"max":null,"currency":null,"period":null}`))
	require.NoError(t, err)
	assert.Nil(t, Normalize(in))

	_, err = ParseInput([]byte(`{"range": `))
	assert.Error(t, err)
}

func TestMarkerJSON(t *testing.T) {
	var empty *Details
	assert.JSONEq(t, `{"range":null,"min":null,"max":null,"currency":null,"period":null}`, string(empty.MarkerJSON()))

	d := Normalize(&Input{Min: Num(90000), Max: Num(110000), Currency: "USD", Period: "year"})
	var got map[string]any
	require.NoError(t, json.Unmarshal(d.MarkerJSON(), &got))
	assert.Equal(t, "$90,000 - $110,000 per year", got["range"])
	assert.Equal(t, 90000.0, got["min"])
	assert.Equal(t, "USD", got["currency"])
	assert.Equal(t, "year", got["period"])

	back, err := ParseInput(d.MarkerJSON())
	require.NoError(t, err)
	assert.Equal(t, d, Normalize(back))
}
