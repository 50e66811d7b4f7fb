package auth

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/interniverse/backend/internal/db"
	"github.com/interniverse/backend/internal/utils"
	"gorm.io/gorm"
)

// SessionTTL is fixed at issuance and never extended in place.
const SessionTTL = time.Hour

var ErrSessionInconsistency = errors.New("session issuance inconsistency")

// newSessionToken draws 128 bits from crypto/rand and renders them as a
// decimal string, the format the sessions table stores.
func newSessionToken() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return new(big.Int).SetBytes(buf[:]).String(), nil
}

// newUserID draws a random non-negative 32-bit id for a new user row.
func newUserID() (int32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("generate user id: %w", err)
	}
	id := int32(binary.BigEndian.Uint32(buf[:]) &^ (1 << 31))
	if id == 0 {
		id = 1
	}
	return id, nil
}

// CreateSession stores a fresh session row for the user and returns the token
// with its absolute expiry in millisecond epoch time. Prior sessions for the
// same user are left untouched.
func CreateSession(userID int32) (string, int64, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", 0, err
	}

	session := Session{
		SessionToken: token,
		UserID:       userID,
		ExpiryDate:   time.Now().Add(SessionTTL).UnixMilli(),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		return "", 0, fmt.Errorf("store session: %w", err)
	}

	return token, session.ExpiryDate, nil
}

// ValidateSession reports whether a session row matches both the user id and
// token and has not expired. Expired rows are not deleted here; they simply
// stop validating.
func ValidateSession(userID int32, token string) (bool, error) {
	var session Session
	err := db.DB.First(&session, "user_id = ? AND session_token = ?", userID, token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if session.ExpiryDate < time.Now().UnixMilli() {
		return false, nil
	}
	return true, nil
}

// issueSession creates a session and immediately checks it validates,
// surfacing a storage inconsistency as an error instead of asserting.
func issueSession(userID int32) (string, int64, error) {
	token, expiry, err := CreateSession(userID)
	if err != nil {
		return "", 0, err
	}

	ok, err := ValidateSession(userID, token)
	if err != nil {
		return "", 0, err
	}
	if !ok {
		return "", 0, ErrSessionInconsistency
	}

	return token, expiry, nil
}

// SessionInfo adapts the sessions table to middleware.SessionFetcher.
type SessionInfo struct{}

func (si SessionInfo) FindSession(userID int32, token string) (utils.SessionData, error) {
	var session Session

	err := db.DB.First(&session, "user_id = ? AND session_token = ?", userID, token).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:     session.UserID,
		Token:      session.SessionToken,
		ExpiryDate: session.ExpiryDate,
	}, nil
}
