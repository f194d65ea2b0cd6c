package transaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnKinds(t *testing.T) {
	input := "month,block,floor_area_sqm,resale_price,postal_code,remaining_lease,empty\n" +
		"2017-01,406,44,232000,560406,61 years 04 months,\n" +
		"2017-01,10A,67.5,250000,050004,,\n" +
		"2017-02,16,,390000,123456,60 years,\n"

	table, err := Read(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindString, // month
		KindString, // block has "10A"
		KindFloat,  // floor_area_sqm mixes 44 and 67.5
		KindInt,    // resale_price
		KindString, // postal_code
		KindString, // remaining_lease
		KindString, // empty
	}, table.ColumnKinds())
}

func TestColumnKinds_WholeNumbersWithBlanksAreFloat(t *testing.T) {
	input := "postal_code,storey,lease_commence_date\n" +
		"560406,3,1979\n" +
		"050004,,1980\n" +
		"123456,12,1985\n"

	table, err := Read(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)

	kinds := table.ColumnKinds()
	assert.Equal(t, KindFloat, kinds[1])
	assert.Equal(t, KindInt, kinds[2])
	assert.Equal(t, float64(3), Typed(table.Records[0].Fields[1], kinds[1]))
	assert.Nil(t, Typed(table.Records[1].Fields[1], kinds[1]))
}

func TestColumnKinds_NaNIsNotNumeric(t *testing.T) {
	table, err := Read(context.Background(), strings.NewReader("postal_code,x\n123456,NaN\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, KindString, table.ColumnKinds()[1])
}

func TestTyped(t *testing.T) {
	assert.Equal(t, int64(232000), Typed("232000", KindInt))
	assert.Equal(t, 67.5, Typed(" 67.5 ", KindFloat))
	assert.Equal(t, "560406", Typed("560406", KindString))
	assert.Nil(t, Typed("", KindString))
	assert.Nil(t, Typed("  ", KindInt))
	assert.Equal(t, "abc", Typed("abc", KindInt))
}
