package auth_test

import (
	"testing"
	"time"

	"github.com/interniverse/backend/internal/auth"
	"github.com/interniverse/backend/internal/db"
)

func requireDB(t *testing.T) {
	t.Helper()
	if testing.Short() || !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
}

func cleanupSessions(t *testing.T, userID int32) {
	t.Helper()
	t.Cleanup(func() {
		db.DB.Where("user_id = ?", userID).Delete(&auth.Session{})
	})
}

// TestCreateSessionThenValidate verifies the core issuance invariant: a
// freshly created session validates for the same user in the same process.
func TestCreateSessionThenValidate(t *testing.T) {
	requireDB(t)
	const userID int32 = 900001
	cleanupSessions(t, userID)

	token, expiry, err := auth.CreateSession(userID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiry <= time.Now().UnixMilli() {
		t.Errorf("expected future expiry, got %d", expiry)
	}

	ok, err := auth.ValidateSession(userID, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if !ok {
		t.Error("expected freshly created session to validate")
	}
}

// TestValidateSession_WrongPair verifies validation requires both the user id
// and the token to match.
func TestValidateSession_WrongPair(t *testing.T) {
	requireDB(t)
	const userID int32 = 900002
	cleanupSessions(t, userID)

	token, _, err := auth.CreateSession(userID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if ok, err := auth.ValidateSession(userID+1, token); err != nil || ok {
		t.Errorf("wrong user id: expected (false, nil), got (%v, %v)", ok, err)
	}
	if ok, err := auth.ValidateSession(userID, token+"0"); err != nil || ok {
		t.Errorf("wrong token: expected (false, nil), got (%v, %v)", ok, err)
	}
}

// TestValidateSession_ExpiredRowKept verifies an expired session stops
// validating even though the row is still stored.
func TestValidateSession_ExpiredRowKept(t *testing.T) {
	requireDB(t)
	const userID int32 = 900003
	cleanupSessions(t, userID)

	token, _, err := auth.CreateSession(userID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := db.DB.Model(&auth.Session{}).
		Where("session_token = ?", token).
		Update("expiry_date", time.Now().Add(-1*time.Minute).UnixMilli()).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	ok, err := auth.ValidateSession(userID, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if ok {
		t.Error("expected expired session to be invalid")
	}

	var count int64
	db.DB.Model(&auth.Session{}).Where("session_token = ?", token).Count(&count)
	if count != 1 {
		t.Errorf("expected expired row to survive validation, found %d rows", count)
	}
}

// TestCreateSession_KeepsPriorSessions verifies issuance never invalidates a
// user's earlier sessions.
func TestCreateSession_KeepsPriorSessions(t *testing.T) {
	requireDB(t)
	const userID int32 = 900004
	cleanupSessions(t, userID)

	first, _, err := auth.CreateSession(userID)
	if err != nil {
		t.Fatalf("CreateSession (first): %v", err)
	}
	second, _, err := auth.CreateSession(userID)
	if err != nil {
		t.Fatalf("CreateSession (second): %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens per issuance")
	}

	for _, token := range []string{first, second} {
		ok, err := auth.ValidateSession(userID, token)
		if err != nil {
			t.Fatalf("ValidateSession: %v", err)
		}
		if !ok {
			t.Errorf("expected session %s... to remain valid", token[:8])
		}
	}
}
