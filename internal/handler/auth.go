package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "net/mail"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/queue"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/session"
    "github.com/studentplanner/planner/internal/utils"
)

// EventPublisher delivers account events to the notifier.
type EventPublisher interface {
    PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthHandler bundles dependencies for the login, register and logout pages.
type AuthHandler struct {
    Users      *repository.UserRepo
    Sessions   *session.Manager
    Publisher  EventPublisher
    BcryptCost int
}

func NewAuthHandler(u *repository.UserRepo, s *session.Manager, p EventPublisher, cost int) *AuthHandler {
    return &AuthHandler{Users: u, Sessions: s, Publisher: p, BcryptCost: cost}
}

func loginView(msg, email string) echo.Map {
    return echo.Map{"User": nil, "Message": msg, "Email": email}
}

func registerView(msg, email, first, last string) echo.Map {
    return echo.Map{"User": nil, "Message": msg, "Email": email, "FirstName": first, "LastName": last}
}

// Login renders the form on GET and signs the user in on POST.
func (h *AuthHandler) Login(c echo.Context) error {
    if _, ok := session.Current(c); ok && c.Request().Method != http.MethodPost {
        return c.Redirect(http.StatusFound, "/dashboard")
    }
    if c.Request().Method != http.MethodPost {
        return c.Render(http.StatusOK, "login", loginView("", ""))
    }

    email := model.NormalizeEmail(c.FormValue("email"))
    password := c.FormValue("password")
    if email == "" || password == "" {
        return c.Render(http.StatusOK, "login", loginView("Fill all fields", email))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.Render(http.StatusOK, "login", loginView("User not found", email))
        }
        return err
    }
    if !u.Enabled {
        return c.Render(http.StatusOK, "login", loginView("Account disabled", email))
    }
    if !utils.VerifyPassword(u.Password, password) {
        return c.Render(http.StatusOK, "login", loginView("Wrong password", email))
    }
    if utils.NeedsRehash(u.Password, h.BcryptCost) {
        if hash, err := utils.HashPassword(password, h.BcryptCost); err == nil {
            if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
                log.Printf("rehash password for user %d: %v", u.ID, err)
            }
        }
    }
    if err := h.Sessions.Start(c, u); err != nil {
        return err
    }
    return c.Redirect(http.StatusFound, "/dashboard")
}

// Register renders the form on GET and creates the account on POST.
func (h *AuthHandler) Register(c echo.Context) error {
    if c.Request().Method != http.MethodPost {
        return c.Render(http.StatusOK, "register", registerView("", "", "", ""))
    }

    email := model.NormalizeEmail(c.FormValue("email"))
    password := c.FormValue("password")
    password2 := c.FormValue("password2")
    first := strings.TrimSpace(c.FormValue("firstName"))
    last := strings.TrimSpace(c.FormValue("lastName"))
    fail := func(msg string) error {
        return c.Render(http.StatusOK, "register", registerView(msg, email, first, last))
    }

    switch {
    case email == "" || password == "" || password2 == "" || first == "" || last == "":
        return fail("Fill all fields")
    case password != password2:
        return fail("Passwords do not match")
    case len([]rune(password)) < MinPasswordLength:
        return fail("Password must be at least 6 characters")
    }
    if _, err := mail.ParseAddress(email); err != nil {
        return fail("Invalid email address")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u := &model.User{Firstname: first, Lastname: last, Email: email, EmailNotifications: true}
    uid, err := h.Users.Create(ctx, u, password, h.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return fail("Email already registered")
        }
        return err
    }

    if h.Publisher != nil {
        ev := queue.UserRegisteredEvent{
            UserID:             uid,
            Email:              u.Email,
            Firstname:          u.Firstname,
            Lastname:           u.Lastname,
            EmailNotifications: u.EmailNotifications,
            RegisteredAt:       time.Now().UTC().Format(time.RFC3339),
        }
        go func() {
            pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer pcancel()
            if err := h.Publisher.PublishUserRegistered(pctx, ev); err != nil {
                log.Printf("publish user.registered for %d: %v", uid, err)
            }
        }()
    }
    return c.Redirect(http.StatusFound, "/login")
}

// Logout ends the session and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
    if err := h.Sessions.Destroy(c); err != nil {
        log.Printf("logout: %v", err)
    }
    return c.Redirect(http.StatusFound, "/login")
}
