package salary

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"120k", 120000},
		{"1.2m", 1200000},
		{"120K", 120000},
		{"$95,000.", 95000},
		{"  42.50 ", 42.5},
		{"1.5 million", 1500000},
		{"USD120000", 120000},
		{"£45,500.75 per year", 45500.75},
		{"around 80 thousand", 80000},
		{"€50.000", 50000},
		{"1.250.000", 1250000},
		{"12.3456", 12.3456},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNumber(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseNumber_NoNumber(t *testing.T) {
	for _, in := range []string{"not a number", "", "Not provided", "$"} {
		assert.Nil(t, ParseNumber(in), in)
	}
}

func TestParseNumber_MonthsIsNotMillions(t *testing.T) {
	got := ParseNumber("6 months")
	require.NotNil(t, got)
	assert.Equal(t, 6.0, *got)
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$100", "USD"},
		{"£45k", "GBP"},
		{"€50,000", "EUR"},
		{"salary paid in usd", "USD"},
		{"C$80,000", "CAD"},
		{"A$ 90k", "AUD"},
		{"90,000 euros", "EUR"},
		{"₹12,00,000", "INR"},
		{"$50 or 40 EUR", "EUR"},
		{"$100 or €90", "EUR"},
		{"45 dollars an hour", "USD"},
		{"CADENCE team", ""},
		{"no money here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCurrency(tt.in))
		})
	}
}

func TestDetectPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"per hour", Hour},
		{"$40/hr", Hour},
		{"paid hourly", Hour},
		{"annually", Year},
		{"per annum", Year},
		{"$120k a year", Year},
		{"$5k/mo", Month},
		{"weekly stipend", Week},
		{"Hourglass", ""},
		{"yearning", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPeriod(tt.in))
		})
	}
}

func TestDetectPeriod_EarliestWins(t *testing.T) {
	assert.Equal(t, Hour, DetectPeriod("$50 per hour, about $100k per year"))
}

func TestLoadVocabulary_MergesOverDefaults(t *testing.T) {
	v, err := LoadVocabulary(filepath.Join("testdata", "vocab.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "PLN", v.Symbols["zł"])
	assert.Equal(t, "GBP", v.Symbols["£"], "default symbols survive")
	assert.Equal(t, []string{"USD", "EUR", "PLN"}, v.Codes)
	assert.Equal(t, []string{"hour", "ph"}, v.Cadence["hour"])

	s := NewScanner(v)
	assert.Equal(t, "PLN", s.DetectCurrency("15 000 zł"))
	assert.Equal(t, Hour, s.DetectPeriod("$30 ph"))
	assert.Equal(t, Period(""), s.DetectPeriod("paid hourly"))

	// The package default is untouched.
	assert.Equal(t, Hour, DetectPeriod("paid hourly"))
	assert.Equal(t, "", DetectCurrency("15 000 zł"))
}

func TestLoadVocabulary_MissingFile(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestScanner_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := Extract("Compensation: $90,000 - $110,000 per year")
			if assert.NotNil(t, d) {
				assert.Equal(t, "USD", d.Currency)
			}
		}()
	}
	wg.Wait()
}
