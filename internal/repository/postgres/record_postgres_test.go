package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesignal/internal/model"
	"savesignal/internal/repository"
)

var recordColumns = []string{"id", "name", "created_at"}

func TestRecordPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	rec := &model.Record{ID: "test-uuid", Name: "Test", CreatedAt: time.Now().UTC()}

	mock.ExpectQuery("INSERT INTO records").
		WithArgs(rec.ID, rec.Name, rec.CreatedAt).
		WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(rec.ID, rec.Name, rec.CreatedAt))

	result, err := repo.Create(ctx, rec)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, *rec, *result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO records").WillReturnError(errors.New("unique violation"))

	result, err := NewRecordPostgres(db).Create(context.Background(), &model.Record{ID: "x", Name: "Test"})

	assert.EqualError(t, err, "unique violation")
	assert.Nil(t, result)
}

func TestRecordPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow("test-id", "Test", time.Now()))

		rec, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "test-id", rec.ID)
		assert.Equal(t, "Test", rec.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, rec)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(recordColumns).
				AddRow("b", "Second", time.Now()).
				AddRow("a", "First", time.Now().Add(-time.Minute)))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "b", res.Items[0].ID)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnError(errors.New("db down"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM records WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRecordPostgres(db).Delete(context.Background(), "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
