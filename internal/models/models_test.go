package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightPriceListPriceFor(t *testing.T) {
	bands := WeightPriceList{
		{MinWeight: 0, MaxWeight: 1, Price: decimal.NewFromInt(10)},
		{MinWeight: 1.01, MaxWeight: 5, Price: decimal.NewFromInt(25)},
		{MinWeight: 5.01, MaxWeight: 30, Price: decimal.NewFromInt(80)},
	}

	price, ok := bands.PriceFor(0.5)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))

	price, ok = bands.PriceFor(5)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(25)))

	price, ok = bands.PriceFor(30)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(80)))

	_, ok = bands.PriceFor(31)
	assert.False(t, ok)

	_, ok = WeightPriceList{}.PriceFor(1)
	assert.False(t, ok)
}

func TestAddressListScanValue(t *testing.T) {
	list := AddressList{
		{
			Street:       "Main St",
			Number:       "42",
			Neighborhood: "Downtown",
			City:         "Miami",
			State:        "FL",
			ZipCode:      "33101",
			Country:      "US",
		},
	}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded AddressList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
}

func TestAddressListScanNil(t *testing.T) {
	var list AddressList
	require.NoError(t, list.Scan(nil))
	assert.Nil(t, list)
}

func TestNilListsValueAsEmptyJSON(t *testing.T) {
	var keys StringList
	value, err := keys.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(value.([]byte)))

	var bands WeightPriceList
	value, err = bands.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(value.([]byte)))
}

func TestWeightPriceListScanString(t *testing.T) {
	var bands WeightPriceList
	require.NoError(t, bands.Scan(`[{"min_weight":0,"max_weight":2,"price":"15.5"}]`))
	require.Len(t, bands, 1)
	assert.True(t, bands[0].Price.Equal(decimal.RequireFromString("15.5")))
}

func TestScanRejectsUnsupportedType(t *testing.T) {
	var keys StringList
	assert.Error(t, keys.Scan(123))
}
