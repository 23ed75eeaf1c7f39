package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"argument", []string{"hash-password", "s3cret"}, ""},
		{"stdin", []string{"hash-password"}, "s3cret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetArgs(tt.args)
			rootCmd.SetIn(strings.NewReader(tt.stdin))
			rootCmd.SetOut(&out)
			require.NoError(t, rootCmd.Execute())

			hash := strings.TrimSpace(out.String())
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
		})
	}
}

func TestHashPasswordCmd_RejectsEmpty(t *testing.T) {
	rootCmd.SetArgs([]string{"hash-password"})
	rootCmd.SetIn(strings.NewReader("\n"))
	rootCmd.SetOut(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
