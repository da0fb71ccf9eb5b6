package sysproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNulToken(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"no nul", []byte("hello"), "hello"},
		{"nul terminated", []byte("hello\x00world"), "hello"},
		{"leading nul", []byte("\x00hello"), ""},
		{"empty", []byte{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, firstNulToken(c.in))
		})
	}
}

func TestIsViableState(t *testing.T) {
	cases := []struct {
		state byte
		want  bool
	}{
		{'R', true},
		{'S', true},
		{'D', true},
		{'T', true},
		{'Z', false},
		{'X', false},
		{'x', false},
		{'0', false},
		{' ', false},
	}
	for _, c := range cases {
		t.Run(string(c.state), func(t *testing.T) {
			assert.Equal(t, c.want, isViableState(c.state), "state=%q", c.state)
		})
	}
}
