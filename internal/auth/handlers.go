package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/interniverse/backend/internal/db"
	"github.com/interniverse/backend/internal/utils"
	"gorm.io/gorm"
)

type SessionResponse struct {
	UserID     int32  `json:"user_id"`
	Username   string `json:"username"`
	ExpiryDate int64  `json:"expiry_date"`
}

func setSessionCookies(w http.ResponseWriter, userID int32, token string, expiry int64) {
	expires := time.UnixMilli(expiry)
	http.SetCookie(w, &http.Cookie{
		Name:     "user_id",
		Value:    strconv.FormatInt(int64(userID), 10),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{"user_id", "session_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			MaxAge: -1,
			Path:   "/",
		})
	}
}

// RegisterHandler creates the user then logs them straight in: a fresh session
// is issued and its token set as a cookie alongside the user id.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	// Check if request has username & password
	if user.Username == "" || user.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	// Check if username is taken
	var existing User
	err = db.DB.First(&existing, "username = ?", user.Username).Error
	if err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	hashed, err := HashPassword(user.Password)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	user.HashedPassword = hashed

	user.UserID, err = newUserID()
	if err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	// Clear user password
	user.Password = ""

	if err := db.DB.Create(&user).Error; err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	token, expiry, err := issueSession(user.UserID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	setSessionCookies(w, user.UserID, token, expiry)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SessionResponse{
		UserID:     user.UserID,
		Username:   user.Username,
		ExpiryDate: expiry,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	password := user.Password

	// Search for matching username
	err = db.DB.First(&user, "username = ?", user.Username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	err = VerifyPassword(user.HashedPassword, password)
	if err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			http.Error(w, "Incorrect password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	token, expiry, err := issueSession(user.UserID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	setSessionCookies(w, user.UserID, token, expiry)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{
		UserID:     user.UserID,
		Username:   user.Username,
		ExpiryDate: expiry,
	})
}

// SessionHandler reports the session identity held in the caller's cookies.
// It answers from the cookies alone; a null body means absent or malformed.
func SessionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	idCookie, idErr := r.Cookie("user_id")
	tokenCookie, tokenErr := r.Cookie("session_token")
	if idErr != nil || tokenErr != nil {
		fmt.Fprintln(w, "null")
		return
	}

	userID, err := strconv.ParseInt(idCookie.Value, 10, 32)
	if err != nil || tokenCookie.Value == "" {
		fmt.Fprintln(w, "null")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"user_id":       int32(userID),
		"session_token": tokenCookie.Value,
	})
}

// SetSessionHandler binds the caller's cookies to a session identity the
// client already holds, e.g. after restoring a remembered login. It only sets
// cookies; the identity is checked against the store on the next protected
// request.
func SetSessionHandler(w http.ResponseWriter, r *http.Request) {
	var session Session

	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if session.SessionToken == "" || session.UserID == 0 {
		http.Error(w, "Session token and user id are required", http.StatusBadRequest)
		return
	}

	setSessionCookies(w, session.UserID, session.SessionToken, session.ExpiryDate)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Session set")
}

// LogoutHandler clears the client's cookies. The server-side row is deleted
// best-effort; an expired or already-gone row is not an error.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_token"); err == nil && cookie.Value != "" {
		db.DB.Delete(&Session{}, "session_token = ?", cookie.Value)
	}

	clearSessionCookies(w)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

type ProfileResponse struct {
	Name   string   `json:"name"`
	School string   `json:"school"`
	Links  []string `json:"links,omitempty"`
}

func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusInternalServerError)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfileResponse{
		Name:   user.Username,
		School: user.School,
		Links:  user.Links,
	})
}

func UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	type UpdatePassword struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var user User
	var updatepass UpdatePassword

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusInternalServerError)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusUnauthorized)
		return
	}

	err = json.NewDecoder(r.Body).Decode(&updatepass)
	if err != nil || updatepass.CurrentPassword == "" || updatepass.NewPassword == "" {
		http.Error(w, "Current and new password are required", http.StatusBadRequest)
		return
	}

	// Make sure user's current password matches stored hash before updating
	if err := VerifyPassword(user.HashedPassword, updatepass.CurrentPassword); err != nil {
		http.Error(w, "Invalid current password", http.StatusUnauthorized)
		return
	}

	hashed, err := HashPassword(updatepass.NewPassword)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	db.DB.Model(&user).Update("hashed_password", hashed)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Password updated")
}
