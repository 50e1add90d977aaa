package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusOpen))
	require.True(t, ValidStatus(StatusInProgress))
	require.True(t, ValidStatus(StatusDone))
	require.False(t, ValidStatus("CLOSED"))
	require.False(t, ValidStatus(""))
}

func TestValidTaskInput(t *testing.T) {
	require.True(t, ValidTaskInput("Buy milk", "2 liters"))
	require.False(t, ValidTaskInput("", "desc"))
	require.False(t, ValidTaskInput("   ", "desc"))
	require.False(t, ValidTaskInput("title", ""))
	require.False(t, ValidTaskInput(strings.Repeat("a", 201), "desc"))
}

func TestValidPassword(t *testing.T) {
	require.True(t, ValidPassword("Password1"))
	require.False(t, ValidPassword("short1A"))
	require.False(t, ValidPassword("alllower1"))
	require.False(t, ValidPassword("ALLUPPER1"))
	require.False(t, ValidPassword("NoDigits"))
}
