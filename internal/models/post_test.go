package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFoodType(t *testing.T) {
	for _, ft := range FoodTypes() {
		assert.True(t, ValidFoodType(ft))
	}
	assert.False(t, ValidFoodType("candy"))
	assert.False(t, ValidFoodType(""))
}

func TestCafeteriaFlagDecode(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`false`:   false,
		`"yes"`:   true,
		`"no"`:    false,
		`"Yes"`:   true,
		`"YES"`:   true,
		`" yes "`: true,
		`null`:    false,
		`""`:      false,
	}
	for raw, want := range cases {
		var f CafeteriaFlag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, bool(f), raw)
	}
}
