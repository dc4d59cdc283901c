package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestParseConfigValue(t *testing.T) {
	assert.Equal(t, true, parseConfigValue("true"))
	assert.Equal(t, true, parseConfigValue("on"))
	assert.Equal(t, false, parseConfigValue("no"))
	assert.Equal(t, int64(1500), parseConfigValue("1500"))
	assert.Equal(t, int64(-1), parseConfigValue("-1"))
	assert.Equal(t, 0.5, parseConfigValue("0.5"))
	assert.Equal(t, "genes.duckdb", parseConfigValue("genes.duckdb"))
}

func TestParseConfigValue_NumericRoundTrip(t *testing.T) {
	v := viper.New()
	v.Set("promoter_up", parseConfigValue("1500"))
	assert.Equal(t, int64(1500), v.GetInt64("promoter_up"))
	v.Set("workers", parseConfigValue("4"))
	assert.Equal(t, 4, v.GetInt("workers"))
}
