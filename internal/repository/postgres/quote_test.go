package postgres

import (
	"context"
	"testing"
	"time"

	"buyback-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestQuoteRepository_AddItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewQuoteRepository(db)
	ctx := context.Background()

	item := func() *domain.QuoteLineItem {
		return &domain.QuoteLineItem{
			QuoteID:           10,
			VariantID:         1,
			ConditionID:       2,
			ClaimedIssues:     domain.IssueSet{CrackedGlass: true},
			RuleID:            7,
			BasePriceCents:    45000,
			TotalPenaltyCents: 5000,
			OfferCents:        40000,
		}
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE quote_requests SET total_offer_cents").
			WithArgs(int64(40000), sqlmock.AnyArg(), int64(10), domain.QuoteStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO quote_line_items").
			WithArgs(int64(10), int64(1), int64(2),
				false, false, false, true, false,
				int64(7), int64(45000), int64(5000), int64(40000)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		it := item()
		err := repo.AddItem(ctx, it)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), it.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QuoteLeftDraft", func(t *testing.T) {
		// The draft guard on the total UPDATE matches nothing, so the insert
		// never runs and the transaction rolls back.
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE quote_requests SET total_offer_cents").
			WithArgs(int64(40000), sqlmock.AnyArg(), int64(10), domain.QuoteStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.AddItem(ctx, item())
		assert.ErrorIs(t, err, domain.ErrQuoteAlreadyLocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuoteRepository_Lock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewQuoteRepository(db)
	ctx := context.Background()
	lockedUntil := time.Now().AddDate(0, 0, 14)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE quote_requests SET status").
			WithArgs(domain.QuoteStatusQuoted, lockedUntil, sqlmock.AnyArg(), int64(10), domain.QuoteStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Lock(ctx, 10, lockedUntil))
	})

	t.Run("AlreadyLocked", func(t *testing.T) {
		mock.ExpectExec("UPDATE quote_requests SET status").
			WithArgs(domain.QuoteStatusQuoted, lockedUntil, sqlmock.AnyArg(), int64(10), domain.QuoteStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Lock(ctx, 10, lockedUntil), domain.ErrQuoteAlreadyLocked)
	})
}

func TestQuoteRepository_ExpireLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewQuoteRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec("UPDATE quote_requests SET status").
		WithArgs(domain.QuoteStatusExpired, now, domain.QuoteStatusQuoted, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.ExpireLocked(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
