package allowance

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `class,ageFrom,ageTo,EE,ES,EC1,EC2,ECmax,FA1,FA2,FAmax
B,18,18,100,200,300,400,500,600,700,800
A,18,18,110.50,210,,410,510,610,710,810
A,64,99,999,,,,,,,"1,999"
`

func TestLoadCSV(t *testing.T) {
	classes, table, err := Load([]byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, classes, "class list must be sorted and deduplicated")

	row := table.Row("A", "18")
	assert.Equal(t, "110.50", row.EE)
	assert.Equal(t, "", row.EC1, "missing rate cell defaults to empty")

	// Age 64 remaps to the overflow band.
	assert.Equal(t, "999", table.Row("A", "64+").EE)
	assert.Equal(t, "1,999", table.Row("A", "64+").FAmax)
	_, ok := table["A"]["64"]
	assert.False(t, ok, "raw \"64\" key must not survive remapping")

	// Absent (class, age) pairs read back as blank rows.
	assert.Equal(t, RateRow{}, table.Row("B", "30"))
	assert.Equal(t, RateRow{}, table.Row("Nowhere", "18"))
}

func TestLoadDuplicateRowLastWins(t *testing.T) {
	csv := "class,ageFrom,EE\nA,18,100\nA,18,250\n"
	_, table, err := Load([]byte(csv))
	require.NoError(t, err)
	assert.Equal(t, "250", table.Row("A", "18").EE)
}

func TestLoadTrimsAndPreservesCase(t *testing.T) {
	csv := "Class,ageFrom,EE\n  New York , 18 , 42 \n"
	classes, table, err := Load([]byte(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"New York"}, classes)
	assert.Equal(t, "42", table.Row("New York", "18").EE)
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	_, _, err := Load([]byte("class,EE\nA,100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ageFrom")

	_, _, err = Load([]byte(""))
	require.Error(t, err)
}

func TestLoadMissingOptionalRateColumns(t *testing.T) {
	classes, table, err := Load([]byte("class,ageFrom\nA,20\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, classes)
	assert.Equal(t, RateRow{}, table.Row("A", "20"))
}

func TestLoadExcel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"class", "ageFrom", "EE", "ES"},
		{"A", 18, 100, 200},
		{"A", 64, 900, 950},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	classes, table, err := Load(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, classes)
	assert.Equal(t, "100", table.Row("A", "18").EE)
	assert.Equal(t, "950", table.Row("A", "64+").ES)
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := LoadFile("testdata/does_not_exist.csv")
	require.Error(t, err)
}
