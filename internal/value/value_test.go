package value_test

import (
	"testing"

	"github.com/loxlang/golox/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestNumberStringTruncatesIntegers(t *testing.T) {
	assert.Equal(t, "3", value.Number(3).String())
	assert.Equal(t, "3.25", value.Number(3.25).String())
}

func TestTruthy(t *testing.T) {
	assert.False(t, value.Truthy(value.Nil{}))
	assert.False(t, value.Truthy(value.Bool(false)))
	assert.True(t, value.Truthy(value.Bool(true)))
	assert.True(t, value.Truthy(value.Number(0)))
	assert.True(t, value.Truthy(value.String("")))
}

func TestEqual(t *testing.T) {
	assert.True(t, value.Equal(value.Nil{}, value.Nil{}))
	assert.False(t, value.Equal(value.Nil{}, value.Number(0)))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.String("1")))
	assert.True(t, value.Equal(value.String("a"), value.String("a")))
}
