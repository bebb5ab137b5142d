package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv_ExpandsBraceAndBareSyntax(t *testing.T) {
	t.Setenv("FOO", "bar")
	out := ExpandEnv([]byte("value: ${FOO}-$FOO"))
	assert.Equal(t, "value: bar-bar", string(out))
}

func TestExpandEnv_MissingVarExpandsEmpty(t *testing.T) {
	out := ExpandEnv([]byte("value: ${ROOTSIGNAL_DOES_NOT_EXIST}"))
	assert.Equal(t, "value: ", string(out))
}
