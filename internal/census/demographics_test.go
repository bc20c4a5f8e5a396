package census

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSVFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demographics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSVFixture(t, `GEOID,total_population,median_household_income,median_age,white_alone,black_alone,asian_alone,hispanic_latino
6037101110,4500,62000,35.2,2000,500,800,1200
06037101220,3200,48000,40.1,1500,400,300,900
`)

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ten-digit GEOIDs are zero-padded to the 11-character tract form.
	r, ok := rows["06037101110"]
	require.True(t, ok)
	assert.Equal(t, 4500.0, r.Population)
	assert.Equal(t, 62000.0, r.MedianIncome)

	_, ok = rows["06037101220"]
	assert.True(t, ok)
}

func TestLoadCSVSentinels(t *testing.T) {
	path := writeCSVFixture(t, `GEOID,total_population,median_household_income,median_age,white_alone,black_alone,asian_alone,hispanic_latino
06037101110,1000,-666666666,-666666666,0,0,0,0
06037101220,-5,30000,28,0,0,0,0
`)

	rows, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0, rows["06037101110"].MedianIncome, "ACS sentinel cleared")
	assert.Equal(t, 0.0, rows["06037101110"].MedianAge)
	assert.Equal(t, 0.0, rows["06037101220"].Population, "negative population cleared")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	in := []Row{
		{GEOID: "06037101110", Population: 4500, MedianIncome: 62000, MedianAge: 35.2},
	}

	require.NoError(t, WriteCSV(path, in))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 62000.0, rows["06037101110"].MedianIncome)
}

func TestPadGEOID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6037101110", "06037101110"},
		{"06037101110", "06037101110"},
		{"  6037101110 ", "06037101110"},
		{"", ""},
		{"060371011101234", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PadGEOID(tt.in), "input %q", tt.in)
	}
}
