package store

import (
	"testing"

	"autostock/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLifecycle(t *testing.T) {
	db := openTestDB(t)
	plans := NewPlanStore(db)

	plan := &model.Plan{
		Name:         "Pro",
		Description:  "Full access",
		Price:        decimal.NewFromFloat(59.99),
		DurationDays: 90,
	}
	require.NoError(t, plans.Create(testContext(), plan))

	found, err := plans.FindByID(testContext(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pro", found.Name)

	updated, err := plans.Update(testContext(), plan.ID, &model.Plan{
		Name:         "Pro Annual",
		Description:  "Full access, yearly",
		Price:        decimal.NewFromFloat(499),
		DurationDays: 365,
	})
	require.NoError(t, err)
	assert.Equal(t, 365, updated.DurationDays)

	list, err := plans.List(testContext())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	t.Run("validation", func(t *testing.T) {
		err := plans.Create(testContext(), &model.Plan{Name: "", DurationDays: 30})
		assert.ErrorIs(t, err, ErrInvalidInput)

		err = plans.Create(testContext(), &model.Plan{Name: "Zero days", DurationDays: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)

		err = plans.Create(testContext(), &model.Plan{
			Name: "Negative", Price: decimal.NewFromInt(-1), DurationDays: 30,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := plans.FindByID(testContext(), 999)
		assert.ErrorIs(t, err, ErrPlanNotFound)

		_, err = plans.Update(testContext(), 999, &model.Plan{Name: "X", DurationDays: 1})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}
