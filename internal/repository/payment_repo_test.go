package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExistsBySessionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cs_test_123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPaymentRepo(db)
	exists, err := repo.ExistsBySessionID(context.Background(), "cs_test_123")
	if err != nil {
		t.Fatalf("ExistsBySessionID: %v", err)
	}
	if !exists {
		t.Fatal("expected exists = true")
	}
}

func TestGetLatestCompletedByUserMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "amount_cents", "currency", "status", "tier_at_payment",
			"subscription_period_start", "subscription_period_end",
			"stripe_subscription_id", "stripe_session_id", "created_at",
		}))

	repo := NewPaymentRepo(db)
	p, err := repo.GetLatestCompletedByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetLatestCompletedByUser: %v", err)
	}
	if p != nil {
		t.Fatalf("payment = %+v, want nil for user with no ledger rows", p)
	}
}

func TestGetLatestBySubscriptionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	subID := "sub_123"
	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs(subID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "amount_cents", "currency", "status", "tier_at_payment",
			"subscription_period_start", "subscription_period_end",
			"stripe_subscription_id", "stripe_session_id", "created_at",
		}).AddRow("pay-1", "user-1", int64(1500), "eur", "completed", "pro",
			now.AddDate(0, -1, 0), now, subID, nil, now))

	repo := NewPaymentRepo(db)
	p, err := repo.GetLatestBySubscriptionID(context.Background(), subID)
	if err != nil {
		t.Fatalf("GetLatestBySubscriptionID: %v", err)
	}
	if p == nil || p.UserID != "user-1" {
		t.Fatalf("payment = %+v, want row for user-1", p)
	}
	if p.StripeSubscriptionID == nil || *p.StripeSubscriptionID != subID {
		t.Fatalf("subscription id = %v, want %s", p.StripeSubscriptionID, subID)
	}
}
