package store

import (
	"testing"

	"autostock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	db := openTestDB(t)
	sales := NewSaleStore(db)
	notifications := NewNotificationStore(db)
	business := createTestBusiness(t, db, "Llantas Norte", model.SubscriptionActive)
	seller := createTestUser(t, db, "maria", "maria-pass", model.RoleSeller, &business.ID)
	product := createTestProduct(t, db, business.ID, "LLANTA001", 45.99, 20)

	_, err := sales.RecordSale(testContext(), business.ID, product.ID, seller.ID, 1, true)
	require.NoError(t, err)
	_, err = sales.RecordSale(testContext(), business.ID, product.ID, seller.ID, 2, true)
	require.NoError(t, err)

	all, err := notifications.ListByBusiness(testContext(), business.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, notifications.MarkRead(testContext(), business.ID, all[0].ID))

	unread, err := notifications.ListByBusiness(testContext(), business.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
	assert.NotEqual(t, all[0].ID, unread[0].ID)

	t.Run("mark read is tenant scoped", func(t *testing.T) {
		other := createTestBusiness(t, db, "Llantas Sur", model.SubscriptionActive)
		assert.ErrorIs(t, notifications.MarkRead(testContext(), other.ID, all[1].ID), ErrNotFound)
	})

	t.Run("other businesses see nothing", func(t *testing.T) {
		other := createTestBusiness(t, db, "Llantas Este", model.SubscriptionActive)
		list, err := notifications.ListByBusiness(testContext(), other.ID, false)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
