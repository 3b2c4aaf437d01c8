package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardRepo_DecrementStock_WhileStockLasts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRewardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reward_items" SET "stock_level"=stock_level - 1.+WHERE id = \$\d+ AND stock_level >= 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := repo.DecrementStockTx(db, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardRepo_DecrementStock_SoldOut(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRewardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reward_items" SET "stock_level"=stock_level - 1.+stock_level >= 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := repo.DecrementStockTx(db, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardRepo_List_ActiveOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRewardRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "cost_points", "stock_level", "active"}).
		AddRow(uuid.New().String(), "Metal Straw Set", 100, 15, true).
		AddRow(uuid.New().String(), "Tesco RM10 Voucher", 500, 10, true)
	mock.ExpectQuery(`SELECT \* FROM "reward_items" WHERE active = true ORDER BY cost_points ASC`).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Metal Straw Set", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardRepo_List_IncludeInactive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRewardRepository(db)

	// No active filter in the SQL when the caller asks for everything.
	mock.ExpectQuery(`SELECT \* FROM "reward_items" ORDER BY cost_points ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cost_points", "stock_level", "active"}).
			AddRow(uuid.New().String(), "Old Promo Tote", 50, 0, false))

	items, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardRepo_Retire(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRewardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reward_items" SET "active"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Retire(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
