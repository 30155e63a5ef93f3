package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColoredMethod(t *testing.T) {
	for method, colour := range map[string]string{
		"GET":     Green,
		"POST":    Blue,
		"OPTIONS": Magenta,
		"TRACE":   Gray,
	} {
		t.Run(method, func(t *testing.T) {
			require.Equal(t, colour+fmt.Sprintf(" %-7s", method)+ResetColor, coloredMethod(method))
		})
	}
}

