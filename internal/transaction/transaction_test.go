package transaction

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-geojoin/internal/postal"
)

const sample = "month, town ,flat_type,block,street_name,postal_code,resale_price\n" +
	"2017-01,ANG MO KIO,2 ROOM,406,ANG MO KIO AVE 10, 560406 ,232000\n" +
	"2017-01,BEDOK,3 ROOM,1,BEDOK NTH ST 3,1234,250000\n" +
	"2017-02,BUKIT MERAH,4 ROOM,16,TELOK BLANGAH CRES,90016.0,390000\n" +
	"2017-02,CLEMENTI,5 ROOM,3,CLEMENTI AVE 2,,500000\n"

func TestRead_NormalisesPostalCodes(t *testing.T) {
	table, err := Read(context.Background(), strings.NewReader(sample), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "town", "flat_type", "block", "street_name", "postal_code", "resale_price"}, table.Columns)
	assert.Equal(t, 5, table.PostalIdx)
	require.Len(t, table.Records, 4)

	first := table.Records[0]
	assert.True(t, first.HasPostal)
	assert.Equal(t, postal.Code("560406"), first.Postal)
	assert.Equal(t, "560406", table.Get(first, "postal_code"))
	assert.Equal(t, "ANG MO KIO", table.Get(first, "town"))
	assert.Equal(t, 1, first.Line)

	// 4 digits cannot be a postal code.
	assert.False(t, table.Records[1].HasPostal)
	assert.Equal(t, "", table.Get(table.Records[1], "postal_code"))

	// Leading zero lost upstream: only 5 digits remain.
	assert.False(t, table.Records[2].HasPostal)

	assert.False(t, table.Records[3].HasPostal)
	assert.Equal(t, "", table.Get(table.Records[3], "no_such_column"))
}

func TestRead_StripsBOM(t *testing.T) {
	input := "\ufeffpostal_code,town\n123456,BEDOK\n"
	table, err := Read(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"postal_code", "town"}, table.Columns)
	assert.Equal(t, 0, table.PostalIdx)
}

func TestRead_Delimiter(t *testing.T) {
	input := "town|postal_code\nBEDOK|460001\n"
	table, err := Read(context.Background(), strings.NewReader(input), Options{Delimiter: '|'})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, postal.Code("460001"), table.Records[0].Postal)
}

func TestRead_CustomPostalColumn(t *testing.T) {
	input := "town,zip\nBEDOK,460001\n"
	table, err := Read(context.Background(), strings.NewReader(input), Options{PostalColumn: "zip"})
	require.NoError(t, err)
	assert.Equal(t, 1, table.PostalIdx)
	assert.True(t, table.Records[0].HasPostal)
}

func TestRead_MissingPostalColumn(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("town,block\nBEDOK,1\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "postal_code" column`)
}

func TestRead_RejectsCoordinateColumns(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("postal_code,latitude\n123456,1.3\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader(""), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func TestRead_RaggedRowIsFatal(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("postal_code,town\n123456,BEDOK,EXTRA\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read row 1")
}

func TestRead_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, strings.NewReader(sample), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestCleanColumns(t *testing.T) {
	got := cleanColumns([]string{" a", "b ", "a", "a"})
	assert.Equal(t, []string{"a", "b", "a.1", "a.2"}, got)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resale.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	table, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Len(t, table.Records, 4)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction: open")
}
