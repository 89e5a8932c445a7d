//go:build unit

package stock_test

import (
	"testing"
	"time"

	"keypool/internal/domain/stock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewEntry(t *testing.T) {
	t.Run("rejects non-positive quantity", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			_, err := stock.NewEntry(uuid.New(), uuid.New(), qty, stock.FulfillManual, nil, t0)
			assert.ErrorIs(t, err, stock.ErrInvalidQuantity)
		}
	})

	t.Run("rejects credential on manual entries", func(t *testing.T) {
		ref := "sealed"
		_, err := stock.NewEntry(uuid.New(), uuid.New(), 1, stock.FulfillManual, &ref, t0)
		assert.ErrorIs(t, err, stock.ErrCredentialForbidden)
	})

	t.Run("accepts credential on automated entries", func(t *testing.T) {
		ref := "sealed"
		e, err := stock.NewEntry(uuid.New(), uuid.New(), 3, stock.FulfillAutomated, &ref, t0)
		require.NoError(t, err)
		assert.Equal(t, 3, e.Quantity())
		require.NotNil(t, e.CredentialRef())
	})
}

func TestEntryQuantityFloor(t *testing.T) {
	e, err := stock.NewEntry(uuid.New(), uuid.New(), 5, stock.FulfillManual, nil, t0)
	require.NoError(t, err)

	t.Run("add rejects non-positive", func(t *testing.T) {
		assert.ErrorIs(t, e.Add(0, t0), stock.ErrInvalidQuantity)
	})

	t.Run("remove clamps at zero", func(t *testing.T) {
		removed, err := e.Remove(3, t0)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		assert.Equal(t, 2, e.Quantity())

		removed, err = e.Remove(10, t0)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, e.Quantity())

		removed, err = e.Remove(1, t0)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.Equal(t, 0, e.Quantity())
	})

	t.Run("entry persists at zero and can be refilled", func(t *testing.T) {
		require.NoError(t, e.Add(4, t0))
		assert.Equal(t, 4, e.Quantity())
	})
}
