package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SYSTEMS_API_TEST_VALUE", "relay")
	assert.Equal(t, "relay", GetEnv("SYSTEMS_API_TEST_VALUE", "fallback"))

	t.Setenv("SYSTEMS_API_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("SYSTEMS_API_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SYSTEMS_API_TEST_UNSET", "fallback"))
}
