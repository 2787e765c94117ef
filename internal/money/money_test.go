package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "whole amount", input: "150", want: 15000},
		{name: "two decimal places", input: "150.25", want: 15025},
		{name: "one decimal place", input: "0.5", want: 50},
		{name: "zero", input: "0", want: 0},
		{name: "negative", input: "-42.10", want: -4210},
		{name: "fractional paise rejected", input: "1.005", wantErr: ErrFractionalMinorUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.MinorUnits())
		})
	}
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("not-a-number")
	assert.Error(t, err)
}

func TestFromDecimal_Overflow(t *testing.T) {
	huge := decimal.New(math.MaxInt64, 0) // already max in major units
	_, err := FromDecimal(huge)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAdd(t *testing.T) {
	a := FromMinorUnits(100)
	b := FromMinorUnits(250)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(350), sum.MinorUnits())

	diff, err := sum.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, a, diff)
}

func TestAdd_Overflow(t *testing.T) {
	top := FromMinorUnits(math.MaxInt64)
	_, err := top.Add(FromMinorUnits(1))
	assert.ErrorIs(t, err, ErrOverflow)

	bottom := FromMinorUnits(math.MinInt64)
	_, err = bottom.Add(FromMinorUnits(-1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = bottom.Sub(FromMinorUnits(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = bottom.Neg()
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCmpAndSigns(t *testing.T) {
	assert.Equal(t, -1, FromMinorUnits(1).Cmp(FromMinorUnits(2)))
	assert.Equal(t, 1, FromMinorUnits(2).Cmp(FromMinorUnits(1)))
	assert.Equal(t, 0, FromMinorUnits(7).Cmp(FromMinorUnits(7)))

	assert.True(t, FromMinorUnits(1).IsPositive())
	assert.False(t, Zero.IsPositive())
	assert.True(t, FromMinorUnits(-1).IsNegative())
	assert.True(t, Zero.IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, "150.25", FromMinorUnits(15025).String())
	assert.Equal(t, "0.00", Zero.String())
	assert.Equal(t, "-42.10", FromMinorUnits(-4210).String())
}

func TestJSONRoundTrip(t *testing.T) {
	original := FromMinorUnits(123456)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"1234.56"`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)

	// Bare numbers are accepted too.
	require.NoError(t, json.Unmarshal([]byte(`99.50`), &decoded))
	assert.Equal(t, int64(9950), decoded.MinorUnits())
}

func TestScan(t *testing.T) {
	var m Money

	require.NoError(t, m.Scan(int64(500)))
	assert.Equal(t, int64(500), m.MinorUnits())

	require.NoError(t, m.Scan([]byte("750")))
	assert.Equal(t, int64(750), m.MinorUnits())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(3.14))
}
