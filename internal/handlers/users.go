package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// UserHandler implements account, session and channel endpoints.
type UserHandler struct {
	Users          UserStore
	Sessions       SessionManager
	Media          MediaUploader
	Reaper         AssetReaper
	Limiter        RateLimiter
	Cookies        CookiePolicy
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Register handles POST /users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if err := allowRequest(h.Limiter, r, "register"); err != nil {
		return err
	}
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		return err
	}
	defer cleanupMultipart(r)

	fullName := formValue(r, "fullName")
	email := strings.ToLower(formValue(r, "email"))
	username := strings.ToLower(formValue(r, "username"))
	password := r.FormValue("password")
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(password) == "" {
		return response.BadRequest("All fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return response.BadRequest("Invalid email address").WithCause(err)
	}

	switch _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); {
	case err == nil:
		return response.Conflict("User with email or username already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return response.Internal("Something went wrong while registering the user", err)
	}

	avatarFile := formFile(r, "avatar")
	if avatarFile == nil {
		return response.BadRequest("Avatar file is required")
	}
	avatar, err := h.Media.UploadImage(ctx, media.FolderAvatars, avatarFile)
	if err != nil {
		return uploadError(err)
	}

	var cover media.Asset
	if coverFile := formFile(r, "coverImage"); coverFile != nil {
		cover, err = h.Media.UploadImage(ctx, media.FolderCovers, coverFile)
		if err != nil {
			scheduleRemoval(ctx, h.Reaper, avatar.URL)
			return uploadError(err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return response.Internal("Something went wrong while registering the user", err)
	}

	now := h.now()
	user := models.User{
		ID:           models.NewID(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar.URL,
		CoverImage:   cover.URL,
		Password:     string(hashed),
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		scheduleRemoval(ctx, h.Reaper, avatar.URL, cover.URL)
		if errors.Is(err, repositories.ErrConflict) {
			return response.Conflict("User with email or username already exists").WithCause(err)
		}
		return response.Internal("Something went wrong while registering the user", err)
	}

	logging.FromContext(ctx).Info("user registered", "userId", user.ID, "username", user.Username)
	response.Write(ctx, w, http.StatusCreated, user, "User registered successfully")
	return nil
}

// Login handles POST /users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if err := allowRequest(h.Limiter, r, "login"); err != nil {
		return err
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" && req.Email == "" {
		return response.BadRequest("Username or email is required")
	}
	if req.Password == "" {
		return response.BadRequest("Password is required")
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return storeError(err, "User does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return response.Unauthorized("Invalid user credentials")
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		return response.Internal("Something went wrong while generating tokens", err)
	}

	setTokenCookies(w, h.Cookies, tokens)
	response.Write(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "User logged in successfully")
	return nil
}

// Logout handles POST /users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := requester(r)
	if err != nil {
		return err
	}

	if err := h.Sessions.Revoke(ctx, user.ID); err != nil {
		return storeError(err, "User does not exist")
	}

	clearTokenCookies(w, h.Cookies)
	response.Write(ctx, w, http.StatusOK, nil, "User logged out")
	return nil
}

// RefreshToken handles POST /users/refresh-token. The token is read from the
// cookie first and the JSON body second.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if err := allowRequest(h.Limiter, r, "refresh"); err != nil {
		return err
	}

	token := ""
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" && r.Body != nil && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		return response.Unauthorized("Unauthorized Request")
	}

	tokens, _, err := h.Sessions.Refresh(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRefreshTokenReused), errors.Is(err, auth.ErrTokenExpired):
		return response.Unauthorized("Refresh Token is expired or used").WithCause(err)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionNotFound):
		return response.Unauthorized("Invalid Refresh Token").WithCause(err)
	default:
		return response.Internal("Something went wrong while refreshing tokens", err)
	}

	setTokenCookies(w, h.Cookies, tokens)
	response.Write(ctx, w, http.StatusOK, tokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "Access token refreshed")
	return nil
}

// ChangePassword handles POST /users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	identity, err := requester(r)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.OldPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		return response.BadRequest("Old and new passwords are required")
	}

	user, err := h.Users.FindByID(ctx, identity.ID)
	if err != nil {
		return storeError(err, "User does not exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return response.BadRequest("Invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return response.Internal("Something went wrong while changing the password", err)
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return storeError(err, "User does not exist")
	}

	response.Write(ctx, w, http.StatusOK, nil, "Password changed successfully")
	return nil
}

// CurrentUser handles GET /users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, err := requester(r)
	if err != nil {
		return err
	}
	response.Write(r.Context(), w, http.StatusOK, user, "Current user fetched successfully")
	return nil
}

// UpdateAccount handles PATCH /users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	identity, err := requester(r)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" {
		return response.BadRequest("All fields are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return response.BadRequest("Invalid email address").WithCause(err)
	}

	user, err := h.Users.UpdateAccount(ctx, identity.ID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return response.Conflict("Email is already in use").WithCause(err)
		}
		return storeError(err, "User does not exist")
	}

	response.Write(ctx, w, http.StatusOK, user, "Account details updated successfully")
	return nil
}

// UpdateAvatar handles PATCH /users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "avatar", media.FolderAvatars)
}

// UpdateCoverImage handles PATCH /users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "coverImage", media.FolderCovers)
}

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, folder string) error {
	ctx := r.Context()
	identity, err := requester(r)
	if err != nil {
		return err
	}
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		return err
	}
	defer cleanupMultipart(r)

	fh := formFile(r, field)
	if fh == nil {
		return response.BadRequest(field + " file is missing")
	}

	asset, err := h.Media.UploadImage(ctx, folder, fh)
	if err != nil {
		return uploadError(err)
	}

	var (
		user     models.User
		previous string
	)
	if folder == media.FolderAvatars {
		previous = identity.Avatar
		user, err = h.Users.UpdateAvatar(ctx, identity.ID, asset.URL)
	} else {
		previous = identity.CoverImage
		user, err = h.Users.UpdateCoverImage(ctx, identity.ID, asset.URL)
	}
	if err != nil {
		scheduleRemoval(ctx, h.Reaper, asset.URL)
		return storeError(err, "User does not exist")
	}
	if previous != "" && previous != asset.URL {
		scheduleRemoval(ctx, h.Reaper, previous)
	}

	message := "Avatar image updated successfully"
	if folder == media.FolderCovers {
		message = "Cover image updated successfully"
	}
	response.Write(ctx, w, http.StatusOK, user, message)
	return nil
}

// ChannelProfile handles GET /users/channel/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	identity, err := requester(r)
	if err != nil {
		return err
	}

	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		return response.BadRequest("Username is missing")
	}

	profile, err := h.Users.ChannelProfile(ctx, username, identity.ID)
	if err != nil {
		return storeError(err, "Channel does not exist")
	}

	response.Write(ctx, w, http.StatusOK, profile, "User channel fetched successfully")
	return nil
}

// WatchHistory handles GET /users/watch-history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	identity, err := requester(r)
	if err != nil {
		return err
	}

	history, err := h.Users.WatchHistory(ctx, identity.ID)
	if err != nil {
		return storeError(err, "User does not exist")
	}
	if history == nil {
		history = []models.VideoWithOwner{}
	}

	response.Write(ctx, w, http.StatusOK, history, "Watch history fetched successfully")
	return nil
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
