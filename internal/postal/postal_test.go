package postal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want Code
		ok   bool
	}{
		{"plain cell", "<th>POSTAL_COD</th><td>123456</td>", "123456", true},
		{"lowercase label", "<th>postal_cod</th><td>560406</td>", "560406", true},
		{"whitespace and newlines", "<th> POSTAL_COD </th>\n  <td>\n 098765 </td>", "098765", true},
		{
			"other digit runs ignored",
			"<th>BLK_NO</th><td>406</td><th>INC_CRC</th><td>999999</td><th>POSTAL_COD</th><td>310406</td>",
			"310406", true,
		},
		{
			"full attribute table",
			`<center><table><tr><th>ADDRESS</th><td>406 ANG MO KIO AVE 10</td></tr>` +
				`<tr bgcolor="#E3E3F3"><th>POSTAL_COD</th><td>560406</td></tr></table></center>`,
			"560406", true,
		},
		{"five digits", "<th>POSTAL_COD</th><td>12345</td>", "", false},
		{"seven digits", "<th>POSTAL_COD</th><td>1234567</td>", "", false},
		{"no label", "<th>ZIP</th><td>123456</td>", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromDescription(tt.desc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDescriptionValue(t *testing.T) {
	code, ok := FromDescriptionValue("<th>POSTAL_COD</th><td>123456</td>")
	assert.True(t, ok)
	assert.Equal(t, Code("123456"), code)

	_, ok = FromDescriptionValue(nil)
	assert.False(t, ok)

	_, ok = FromDescriptionValue(123456.0)
	assert.False(t, ok, "a bare number has no label")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Code
		ok   bool
	}{
		{"123456", "123456", true},
		{" 123456 ", "123456", true},
		{"123456.0", "123456", true},
		{"S(560406)", "560406", true},
		{"050004", "050004", true},
		{"1234", "", false},
		{"50004", "", false},
		{"", "", false},
		{"nan", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	code, ok := NormalizeValue(float64(560406))
	assert.True(t, ok)
	assert.Equal(t, Code("560406"), code)

	code, ok = NormalizeValue(int64(98765))
	assert.False(t, ok)
	assert.Empty(t, code)

	_, ok = NormalizeValue(nil)
	assert.False(t, ok)
}

func TestCodeValid(t *testing.T) {
	assert.True(t, Code("000001").Valid())
	assert.False(t, Code("12345").Valid())
	assert.False(t, Code("12345a").Valid())
	assert.False(t, Code("").Valid())
}

func TestPad(t *testing.T) {
	assert.Equal(t, Code("000123"), pad("123"))
	assert.Equal(t, Code("123456"), pad("123456"))
}
