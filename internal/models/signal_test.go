package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKeyword(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Mountain Sunset", "mountain sunset"},
		{"  mountain   sunset  ", "mountain sunset"},
		{"\tMOUNTAIN\nSUNSET\t", "mountain sunset"},
		{"sunset", "sunset"},
		{"", ""},
		{"   ", ""},
		{"\t\n", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeKeyword(tc.in), "input %q", tc.in)
	}
}
