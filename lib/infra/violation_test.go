package infra

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var errNotPositive = errors.New("not positive")

//go:noinline
func mustPositive(n int) int {
	if n <= 0 {
		Violate("mustPositive", errNotPositive)
	}
	return n
}

//go:noinline
func callMustPositive(n int) (v *ContractViolation) {
	defer func() {
		v, _ = AsContractViolation(recover())
	}()
	mustPositive(n)
	return nil
}

func TestViolate(t *testing.T) {
	require.Nil(t, callMustPositive(1))

	v := callMustPositive(0)
	require.NotNil(t, v)
	require.Equal(t, "mustPositive", v.Op)
	require.ErrorIs(t, v, errNotPositive)
	require.Equal(t, "violation_test.go", fmt.Sprintf("%s", v.Frame))
	require.Equal(t, "callMustPositive", fmt.Sprintf("%n", v.Frame))
	require.Contains(t, v.Error(), "mustPositive: not positive (called at violation_test.go:")

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, v.MarshalLogObject(enc))
	require.Equal(t, "mustPositive", enc.Fields["op"])
	require.Equal(t, "not positive", enc.Fields["error"])
	require.Contains(t, enc.Fields["calledAt"], "callMustPositive")
}

func TestAsContractViolation(t *testing.T) {
	_, ok := AsContractViolation(nil)
	require.False(t, ok)
	_, ok = AsContractViolation("plain panic")
	require.False(t, ok)
	_, ok = AsContractViolation(errNotPositive)
	require.False(t, ok)

	wrapped := fmt.Errorf("wrapped: %w", &ContractViolation{Op: "op", Err: errNotPositive})
	v, ok := AsContractViolation(wrapped)
	require.True(t, ok)
	require.Equal(t, "op", v.Op)
}

func TestUnknownFrame(t *testing.T) {
	testcases := []struct {
		format string
		want   string
	}{
		{"%s", "unknownFile"},
		{"%n", "unknownFunc"},
		{"%d", "0"},
		{"%v", "unknownFile:0"},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, Frame(0)))
	}
	text, err := Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}
