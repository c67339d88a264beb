package manager_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultmanager/manager"
)

func TestSafeAdd(t *testing.T) {
	sum, err := manager.SafeAdd(big.NewInt(100), big.NewInt(23))
	require.NoError(t, err)
	assert.Equal(t, int64(123), sum.Int64())

	// nil 按 0 处理
	sum, err = manager.SafeAdd(nil, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Int64())

	// 刚好到上限不算溢出
	sum, err = manager.SafeAdd(new(big.Int).Sub(manager.MaxUint256, big.NewInt(1)), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, manager.MaxUint256, sum)

	_, err = manager.SafeAdd(manager.MaxUint256, big.NewInt(1))
	require.ErrorIs(t, err, manager.ErrOverflow)

	_, err = manager.SafeAdd(big.NewInt(-1), big.NewInt(1))
	require.ErrorIs(t, err, manager.ErrNegativeBalance)
}

func TestSafeSub(t *testing.T) {
	diff, err := manager.SafeSub(big.NewInt(100), big.NewInt(23))
	require.NoError(t, err)
	assert.Equal(t, int64(77), diff.Int64())

	diff, err = manager.SafeSub(big.NewInt(100), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(0), diff.Int64())

	_, err = manager.SafeSub(big.NewInt(100), big.NewInt(101))
	require.ErrorIs(t, err, manager.ErrUnderflow)

	_, err = manager.SafeSub(big.NewInt(1), big.NewInt(-1))
	require.ErrorIs(t, err, manager.ErrNegativeBalance)
}

func TestParseBalance(t *testing.T) {
	b, err := manager.ParseBalance("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Int64())

	b, err = manager.ParseBalance("123456789012345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", b.String())

	_, err = manager.ParseBalance("12a3")
	require.ErrorIs(t, err, manager.ErrInvalidBalance)
	_, err = manager.ParseBalance("-1")
	require.ErrorIs(t, err, manager.ErrInvalidBalance)
	_, err = manager.ParseBalance(strings.Repeat("9", manager.MaxBalanceStringLen+1))
	require.ErrorIs(t, err, manager.ErrBalanceTooLong)

	// 78 位但超过 2^256-1
	_, err = manager.ParseBalance(strings.Repeat("9", manager.MaxBalanceStringLen))
	require.ErrorIs(t, err, manager.ErrOverflow)
}
