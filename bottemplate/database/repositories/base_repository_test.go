package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ellavondegurechaff/progression/bottemplate/database/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

func TestHandleError(t *testing.T) {
	if err := HandleError("get", "user_progression", nil); err != nil {
		t.Fatalf("HandleError(nil) = %v", err)
	}

	err := HandleError("get", "user_progression", sql.ErrNoRows)
	if !IsNotFound(err) {
		t.Errorf("HandleError(ErrNoRows) = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("HandleError(ErrNoRows) lost the driver error")
	}
	var re *RepositoryError
	if !errors.As(err, &re) || re.Entity != "user_progression" {
		t.Errorf("HandleError() = %#v, want *RepositoryError", err)
	}

	if again := HandleError("commit", "transaction", err); again != err {
		t.Errorf("HandleError() rewrapped an existing RepositoryError")
	}

	boom := errors.New("boom")
	if err := HandleError("get", "profiles", boom); IsNotFound(err) || IsConflict(err) || !errors.Is(err, boom) {
		t.Errorf("HandleError(boom) = %v", err)
	}
}

func TestParseDay(t *testing.T) {
	want := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-10", "2024-03-10T00:00:00Z", "2024-03-10 00:00:00+00"} {
		got, err := parseDay(raw)
		if err != nil {
			t.Fatalf("parseDay(%q) error = %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("parseDay(%q) = %v, want %v", raw, got, want)
		}
	}

	if _, err := parseDay("yesterday"); err == nil {
		t.Error("parseDay(yesterday) succeeded")
	}
}

func TestToEntryDecodesMetadata(t *testing.T) {
	raw, err := rewards.EncodeMetadata(rewards.StreakClaim{Day: "2024-03-10", CycleDay: 3, StreakLength: 10})
	if err != nil {
		t.Fatal(err)
	}
	row := &models.LedgerEntry{
		ID:       uuid.New(),
		UserID:   42,
		Type:     string(rewards.EntryStreakClaim),
		Amount:   15,
		XP:       20,
		Metadata: raw,
	}

	entry, err := toEntry(row)
	if err != nil {
		t.Fatalf("toEntry() error = %v", err)
	}
	meta, ok := entry.Metadata.(rewards.StreakClaim)
	if !ok {
		t.Fatalf("toEntry() metadata = %T, want StreakClaim", entry.Metadata)
	}
	if meta.CycleDay != 3 || meta.StreakLength != 10 || entry.UserID != 42 {
		t.Errorf("toEntry() = %+v", entry)
	}
}
