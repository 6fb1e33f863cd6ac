package membership

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const sampleCSV = "first_name,last_name,email,address1,address2,city,state,zip,country\n" +
	"Ada,Lovelace,ada@example.org,301 W 2nd St,,Austin,TX,78701,US\n" +
	"Grace,Hopper,grace@example.org,1100 Congress Ave,Suite 2,Austin,TX,78701,US\n"

func TestRow_LookupAndSet(t *testing.T) {
	r := NewRow([]string{"a", "b", "c"}, []string{"1", ""})

	v, ok := r.Lookup("b")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = r.Lookup("c")
	assert.False(t, ok)
	assert.Empty(t, r.Value("c"))
	assert.False(t, r.Has("c"))

	r.Set("a", "changed")
	r.Set("d", "new")
	assert.Equal(t, []string{"a", "b", "d"}, r.Columns())
	assert.Equal(t, []string{"changed", "", "", "new"}, r.Values([]string{"a", "b", "c", "d"}))
}

func TestRow_Clone(t *testing.T) {
	r := NewRow([]string{"a"}, []string{"1"})
	c := r.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	assert.Equal(t, "1", r.Value("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, []string{"a"}, r.Columns())
}

func TestTable_OutputColumns(t *testing.T) {
	tbl := &Table{Columns: []string{"first_name", "city", "first_name"}}
	r1 := NewRow(tbl.Columns, []string{"Ada", "Austin", "Ada"})
	r2 := NewRow(tbl.Columns, []string{"Bob", "Austin", "Bob"})
	r2.Set(ColumnGeocodedAddress, "")
	r2.Set(ColumnCouncilDistrict, "")
	r1.Set(ColumnGeocodedAddress, "301 W 2ND ST")
	tbl.Rows = []*Row{r1, r2}

	assert.Equal(t,
		[]string{"first_name", "city", ColumnGeocodedAddress, ColumnCouncilDistrict},
		tbl.OutputColumns(),
	)
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"first_name", "last_name", "email", "address1", "address2", "city", "state", "zip", "country"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Ada", tbl.Rows[0].Value("first_name"))
	assert.Equal(t, "Suite 2", tbl.Rows[1].Value("address2"))

	v, ok := tbl.Rows[0].Lookup("address2")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestReadCSV_StripsBOM(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\ufeff" + sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "first_name", tbl.Columns[0])
	assert.Equal(t, "Ada", tbl.Rows[0].Value("first_name"))
}

func TestReadCSV_ShortRowPadsEmpty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,city_council_district\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	v, ok := tbl.Rows[0].Lookup(ColumnCouncilDistrict)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestReadCSV_LongRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 3 fields, header has 2")
}

func TestReadCSV_BareQuotes(t *testing.T) {
	in := "first_name,last_name,address1,city\n" +
		"Bob,\"Smith\",12\" Oak St,Austin\n" +
		"Shan,O\"Neil,1 Elm St,Austin\n"

	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)

	assert.Equal(t, "Smith", tbl.Rows[0].Value("last_name"))
	assert.Equal(t, `12" Oak St`, tbl.Rows[0].Value("address1"))
	assert.Equal(t, "Austin", tbl.Rows[0].Value("city"))
	assert.Equal(t, `O"Neil`, tbl.Rows[1].Value("last_name"))
}

func TestReadCSV_QuotedCommas(t *testing.T) {
	in := "first_name,address1,address2,city\n" +
		"Ada,\"301 W 2nd St, Unit 4\",\"Attn: \"\"Front Desk\"\"\",Austin\n"

	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	assert.Equal(t, "301 W 2nd St, Unit 4", tbl.Rows[0].Value("address1"))
	assert.Equal(t, `Attn: "Front Desk"`, tbl.Rows[0].Value("address2"))
	assert.Equal(t, "Austin", tbl.Rows[0].Value("city"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header")
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
}

func TestWriteCSV_AppendsNewColumns(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	tbl.Rows[0].Set(ColumnGeocodedAddress, "301 W 2ND ST")
	tbl.Rows[0].Set(ColumnCouncilDistrict, "9")
	tbl.Rows[1].Set(ColumnGeocodedAddress, "")
	tbl.Rows[1].Set(ColumnCouncilDistrict, "")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	want := "first_name,last_name,email,address1,address2,city,state,zip,country,geocoded_address,city_council_district\n" +
		"Ada,Lovelace,ada@example.org,301 W 2nd St,,Austin,TX,78701,US,301 W 2ND ST,9\n" +
		"Grace,Hopper,grace@example.org,1100 Congress Ave,Suite 2,Austin,TX,78701,US,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_QuotesFields(t *testing.T) {
	tbl := &Table{Columns: []string{"address1"}}
	tbl.Rows = []*Row{NewRow(tbl.Columns, []string{`12 "A" St, Unit 3`})}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.Equal(t, "address1\n\"12 \"\"A\"\" St, Unit 3\"\n", buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, `12 "A" St, Unit 3`, back.Rows[0].Value("address1"))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFor("members.xlsx"))
	assert.Equal(t, FormatXLSX, FormatFor("MEMBERS.XLSX"))
	assert.Equal(t, FormatCSV, FormatFor("members.csv"))
	assert.Equal(t, FormatCSV, FormatFor("members"))
}

func TestFile_CSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleCSV), 0o644))

	tbl, err := ReadFile(in)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(out, tbl))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "membership: open input")
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "members.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"first_name", "address1", "city_council_district"},
		{"Ada", "301 W 2nd St", ""},
		{"", "", ""},
		{"Grace", "1100 Congress Ave", "9"},
	})

	tbl, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_name", "address1", "city_council_district"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)

	v, ok := tbl.Rows[0].Lookup(ColumnCouncilDistrict)
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "9", tbl.Rows[1].Value(ColumnCouncilDistrict))
}

func TestReadXLSX_TooManyCells(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"a", "b"},
		{"1", "2", "3"},
	})

	_, err := ReadXLSX(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 3 cells, header has 2")
}

func TestFile_XLSXRoundTrip(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	tbl.Rows[0].Set(ColumnGeocodedAddress, "301 W 2ND ST")
	tbl.Rows[0].Set(ColumnCouncilDistrict, "9")

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(path, tbl))

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.OutputColumns(), back.Columns)
	require.Len(t, back.Rows, 2)
	assert.Equal(t, "9", back.Rows[0].Value(ColumnCouncilDistrict))
	assert.Equal(t, "Suite 2", back.Rows[1].Value("address2"))

	v, ok := back.Rows[1].Lookup(ColumnCouncilDistrict)
	assert.True(t, ok)
	assert.Empty(t, v)
}
