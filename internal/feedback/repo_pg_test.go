package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"authenticity-backend/internal/content"
)

func TestPGRepoListIncorrect(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "analysis_id", "user_id", "content_type", "is_correct", "user_verdict", "prior_score", "comment", "created_at"}).
		AddRow("fb-1", nil, "user-1", "text", false, "fake", 88, "satire", now)
	mock.ExpectQuery("SELECT (.+) FROM analysis_feedback").
		WithArgs("text", 10).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.ListIncorrect(context.Background(), content.TypeText, 10)
	if err != nil {
		t.Fatalf("ListIncorrect: %v", err)
	}
	if len(got) != 1 || got[0].UserVerdict != VerdictFake || got[0].PriorScore != 88 || got[0].AnalysisID != "" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	rec := Record{
		ID:          "fb-1",
		UserID:      "user-1",
		ContentType: content.TypeImage,
		UserVerdict: VerdictReal,
		PriorScore:  12,
		Comment:     "camera original",
		CreatedAt:   time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO analysis_feedback").
		WithArgs(rec.ID, nil, rec.UserID, "image", false, "real", 12, rec.Comment, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&PGRepo{DB: db}).Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
