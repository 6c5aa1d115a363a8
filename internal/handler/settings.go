package handler

import (
    "errors"
    "log"
    "net/mail"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
    "github.com/studentplanner/planner/internal/session"
    "github.com/studentplanner/planner/internal/utils"
)

// MinPasswordLength is enforced on registration and password changes.
const MinPasswordLength = 6

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
    Users      *repository.UserRepo
    Sessions   *session.Manager
    BcryptCost int
}

func NewSettingsHandler(users *repository.UserRepo, sessions *session.Manager, cost int) *SettingsHandler {
    return &SettingsHandler{Users: users, Sessions: sessions, BcryptCost: cost}
}

// Profile handles GET /api/settings/profile.
func (h *SettingsHandler) Profile(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return storeErr(err, "User not found")
    }
    return response.OK(c, u)
}

// UpdateProfile handles PUT /api/settings/profile.  Blank names and email
// are ignored; blank optional fields are cleared.
func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return storeErr(err, "User not found")
    }
    if v := p.String("firstname"); v != "" {
        u.Firstname = v
    }
    if v := p.String("lastname"); v != "" {
        u.Lastname = v
    }
    if v := p.String("email"); v != "" {
        if _, err := mail.ParseAddress(v); err != nil {
            return response.Invalid("Invalid email address")
        }
        taken, err := h.Users.EmailTaken(ctx, v, uid)
        if err != nil {
            return response.Persistence(err)
        }
        if taken {
            return response.Invalid("Email already taken")
        }
        u.Email = v
    }
    if p.Has("studentId") {
        u.StudentID = p.NullableString("studentId")
    }
    if p.Has("university") {
        u.University = p.NullableString("university")
    }
    if p.Has("bio") {
        u.Bio = p.NullableString("bio")
    }

    if err := h.Users.UpdateProfile(ctx, u); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return response.Invalid("Email already taken")
        }
        return response.Persistence(err)
    }
    if err := h.Sessions.Update(c, u.Firstname, u.Email); err != nil {
        log.Printf("refresh session cache for user %d: %v", uid, err)
    }
    return response.Message(c, "Profile updated", u)
}

// UpdatePreferences handles PUT /api/settings/preferences.  Keys absent
// from the body keep their stored value.
func (h *SettingsHandler) UpdatePreferences(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return storeErr(err, "User not found")
    }
    if p.Has("darkMode") {
        u.DarkMode = p.Bool("darkMode")
    }
    if p.Has("emailNotifications") {
        u.EmailNotifications = p.Bool("emailNotifications")
    }
    if err := h.Users.UpdatePreferences(ctx, uid, u.DarkMode, u.EmailNotifications); err != nil {
        return response.Persistence(err)
    }
    return response.Message(c, "Preferences updated", echo.Map{
        "darkMode":           u.DarkMode,
        "emailNotifications": u.EmailNotifications,
    })
}

// ChangePassword handles PUT /api/settings/password.
func (h *SettingsHandler) ChangePassword(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    current, next := p.Text("currentPassword"), p.Text("newPassword")
    switch {
    case current == "":
        return response.Invalid("Current password is required")
    case next == "":
        return response.Invalid("New password is required")
    case len([]rune(next)) < MinPasswordLength:
        return response.Invalid("Password must be at least 6 characters")
    case p.Has("confirmPassword") && p.Text("confirmPassword") != next:
        return response.Invalid("Passwords do not match")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return storeErr(err, "User not found")
    }
    if !utils.VerifyPassword(u.Password, current) {
        return response.Invalid("Current password is incorrect")
    }
    hash, err := utils.HashPassword(next, h.BcryptCost)
    if err != nil {
        return response.Persistence(err)
    }
    if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
        return response.Persistence(err)
    }
    return response.Message(c, "Password changed", nil)
}
