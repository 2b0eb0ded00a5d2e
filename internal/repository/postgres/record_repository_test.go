package postgres

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"KbjuCoachService/internal/models"
)

func testDay() time.Time {
	return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
}

// TestUpsertInsertsNewRecord тестирует создание первого замера за день
func TestUpsertInsertsNewRecord(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	record := &models.Record{
		UserID:     1,
		Date:       testDay().Add(15 * time.Hour), // время дня должно отбрасываться
		WeightKg:   80,
		Steps:      models.Steps5KTo8K,
		SportType:  models.SportStrength,
		SportFreq:  models.Freq3To4,
		WaistCm:    85,
		NeckCm:     38,
		BodyFatPct: 16.4,
		Goal:       models.GoalRecomposition,
		Calories:   2587,
		ProteinG:   160,
		FatG:       80,
		CarbsG:     307,
	}

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 AND date = $2`)).
		WithArgs(record.UserID, testDay(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectQuery(`INSERT INTO "records" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

	mock.ExpectCommit()

	if err := repo.Upsert(record); err != nil {
		t.Fatalf("Failed to upsert record: %v", err)
	}

	if !record.Date.Equal(testDay()) {
		t.Errorf("Expected date truncated to day, got %v", record.Date)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestUpsertOverwritesSameDay тестирует идемпотентность повторного сохранения за день
func TestUpsertOverwritesSameDay(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	record := &models.Record{
		UserID:   1,
		Date:     testDay(),
		WeightKg: 79.5,
		Steps:    models.Steps8KTo10K,
		Goal:     models.GoalFatLoss,
	}

	mock.ExpectBegin()

	existing := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg", "goal"}).
		AddRow(10, 1, testDay(), 80.0, models.GoalRecomposition)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 AND date = $2`)).
		WithArgs(record.UserID, testDay(), 1).
		WillReturnRows(existing)

	mock.ExpectExec(`UPDATE "records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	if err := repo.Upsert(record); err != nil {
		t.Fatalf("Failed to upsert record: %v", err)
	}

	// При перезаписи запись сохраняет исходный ID
	if record.ID != 10 {
		t.Errorf("Expected record to reuse existing ID 10, got %d", record.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestGetOrCreateTodayReturnsExisting тестирует, что существующий
// замер за день возвращается без создания нового
func TestGetOrCreateTodayReturnsExisting(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	mock.ExpectBegin()

	existing := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg"}).
		AddRow(10, 1, testDay(), 80.0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 AND date = $2`)).
		WithArgs(uint(1), testDay(), 1).
		WillReturnRows(existing)

	mock.ExpectCommit()

	record, err := repo.GetOrCreateToday(1, testDay().Add(15*time.Hour))
	if err != nil {
		t.Fatalf("Failed to get today's record: %v", err)
	}
	if record.ID != 10 {
		t.Errorf("Expected existing record 10, got %d", record.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestGetOrCreateTodayClonesLatest тестирует создание сегодняшнего
// замера копией последнего, когда записи за день еще нет
func TestGetOrCreateTodayClonesLatest(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 AND date = $2`)).
		WithArgs(uint(1), testDay(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	latest := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg", "goal"}).
		AddRow(7, 1, testDay().AddDate(0, 0, -7), 80.0, models.GoalRecomposition)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 ORDER BY date DESC`)).
		WithArgs(uint(1), 1).
		WillReturnRows(latest)

	mock.ExpectQuery(`INSERT INTO "records" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	mock.ExpectCommit()

	record, err := repo.GetOrCreateToday(1, testDay())
	if err != nil {
		t.Fatalf("Failed to create today's record: %v", err)
	}
	if !record.Date.Equal(testDay()) {
		t.Errorf("Expected today's date, got %v", record.Date)
	}
	if record.WeightKg != 80.0 || record.Goal != models.GoalRecomposition {
		t.Errorf("Expected copy of the latest record, got %+v", record)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestUpdateGoalWritesToday тестирует смену цели в замере за текущий день
func TestUpdateGoalWritesToday(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	mock.ExpectBegin()

	existing := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg", "goal", "calories"}).
		AddRow(10, 1, testDay(), 80.0, models.GoalRecomposition, 2735)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 AND date = $2`)).
		WithArgs(uint(1), testDay(), 1).
		WillReturnRows(existing)

	mock.ExpectExec(`UPDATE "records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	kbju := models.KBJU{Calories: 2447, ProteinG: 160, FatG: 80, CarbsG: 278}
	record, err := repo.UpdateGoal(1, testDay().Add(10*time.Hour), models.GoalFatLoss, kbju)
	if err != nil {
		t.Fatalf("Failed to update goal: %v", err)
	}
	if record.ID != 10 || record.Goal != models.GoalFatLoss || record.Calories != 2447 {
		t.Errorf("Unexpected record after goal update: %+v", record)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestGetLatest тестирует получение последнего замера
func TestGetLatest(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg"}).
		AddRow(3, 1, testDay(), 79.0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 ORDER BY date DESC`)).
		WithArgs(uint(1), 1).
		WillReturnRows(rows)

	record, err := repo.GetLatest(1)
	if err != nil {
		t.Fatalf("Failed to get latest record: %v", err)
	}

	if record.WeightKg != 79.0 {
		t.Errorf("Unexpected record: %+v", record)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestGetAllAscending тестирует выборку истории в хронологическом порядке
func TestGetAllAscending(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewRecordRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "weight_kg"}).
		AddRow(1, 1, testDay().AddDate(0, 0, -14), 82.0).
		AddRow(2, 1, testDay(), 80.0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "records" WHERE user_id = $1 ORDER BY date ASC`)).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	records, err := repo.GetAllAscending(1)
	if err != nil {
		t.Fatalf("Failed to get records: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if !records[0].Date.Before(records[1].Date) {
		t.Error("Records must be in ascending date order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
