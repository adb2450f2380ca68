package excel

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mlstudio/domain/dataset"
	"mlstudio/internal"
)

func newReader(cfg ReaderConfig) *DataReader {
	return NewDataReader(cfg, internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard))
}

func TestReadCSV(t *testing.T) {
	csv := "\xef\xbb\xbfname, age ,survived,fare\n" +
		"Alice,29,true,7.25\n" +
		",,,\n" +
		"Bob,,false,\n" +
		"Carol,41\n"

	result, err := newReader(DefaultReaderConfig()).ReadBytes(context.Background(), "people.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, "people.csv", result.Source)
	assert.Equal(t, []string{"name", "age", "survived", "fare"}, result.Headers)
	require.Len(t, result.Rows, 3, "the all-empty row is skipped")

	alice := result.Rows[0]
	assert.Equal(t, []string{"name", "age", "survived", "fare"}, alice.Keys())
	assert.Equal(t, dataset.KindText, alice.Value("name").Kind())
	assert.True(t, dataset.Number(29).Equal(alice.Value("age")))
	assert.True(t, dataset.Bool(true).Equal(alice.Value("survived")))
	assert.True(t, dataset.Number(7.25).Equal(alice.Value("fare")))

	assert.True(t, result.Rows[1].Value("age").IsMissing())
	assert.True(t, result.Rows[2].Value("fare").IsMissing(), "short records are padded with empty cells")
}

func TestReadTSVAndHeaders(t *testing.T) {
	tsv := "a\t\ta\n1\t2\t3\n"

	result, err := newReader(DefaultReaderConfig()).ReadBytes(context.Background(), "x.tsv", []byte(tsv))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2", "a_1"}, result.Headers)
	require.Len(t, result.Rows, 1)
	assert.True(t, dataset.Number(3).Equal(result.Rows[0].Value("a_1")))
}

func TestReadMaxRows(t *testing.T) {
	cfg := DefaultReaderConfig()
	cfg.MaxRows = 2

	result, err := newReader(cfg).ReadBytes(context.Background(), "x.csv", []byte("v\n1\n2\n3\n"))
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "species"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "petal_length"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "flag"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "setosa"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1.4))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", true))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "42"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 4.7))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", false))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := newReader(DefaultReaderConfig()).ReadBytes(context.Background(), "iris.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"species", "petal_length", "flag"}, result.Headers)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.True(t, dataset.Text("setosa").Equal(first.Value("species")))
	assert.True(t, dataset.Number(1.4).Equal(first.Value("petal_length")))
	assert.True(t, dataset.Bool(true).Equal(first.Value("flag")))

	assert.True(t, dataset.Text("42").Equal(result.Rows[1].Value("species")), "string cells stay text")
	assert.True(t, dataset.Bool(false).Equal(result.Rows[1].Value("flag")))
}

func TestReadJSON(t *testing.T) {
	payload := `[{"b":1,"a":"x"},{},{"b":2,"a":"y","c":true}]`

	result, err := newReader(DefaultReaderConfig()).ReadBytes(context.Background(), "rows.json", []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, result.Headers)
	assert.Len(t, result.Rows, 2)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0o644))

	result, err := newReader(DefaultReaderConfig()).ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", result.Source)
	assert.Len(t, result.Rows, 1)

	_, err = newReader(DefaultReaderConfig()).ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"data.csv", TypeCSV, true},
		{"DATA.CSV", TypeCSV, true},
		{"data.tsv", TypeTSV, true},
		{"book.xlsx", TypeXLSX, true},
		{"book.xlsm", TypeXLSX, true},
		{"rows.json", TypeJSON, true},
		{"notes.txt", "", false},
		{"data.parquet", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFileType(tt.name)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadErrors(t *testing.T) {
	r := newReader(DefaultReaderConfig())

	_, err := r.ReadBytes(context.Background(), "data.parquet", []byte("x"))
	assert.Error(t, err)

	_, err = r.ReadBytes(context.Background(), "notes.txt", []byte("hello"))
	assert.Error(t, err)

	_, err = r.ReadBytes(context.Background(), "empty.csv", []byte(""))
	assert.Error(t, err)

	_, err = r.ReadBytes(context.Background(), "bad.json", []byte(`{"a":1}`))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ReadBytes(ctx, "data.csv", []byte("a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
