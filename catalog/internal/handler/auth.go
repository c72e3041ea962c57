package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/errs"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
)

const sessionCookieName = "catalog_session"

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.authSvc.Login(c.Request().Context(), req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			// one account only: never say whether username or password failed
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token, int(h.cfg.SessionTTL.Seconds())))
	return c.JSON(http.StatusOK, model.LoginResponse{
		Success: true,
		Message: "Login successful",
	})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.authSvc.Logout(c.Request().Context(), sessionToken(c)); err != nil {
		return err
	}
	c.SetCookie(h.sessionCookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AuthStatus(c echo.Context) error {
	// the client must always see the current state
	header := c.Response().Header()
	header.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")

	ok, err := h.authSvc.IsAuthenticated(c.Request().Context(), sessionToken(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, model.AuthStatusResponse{Authenticated: ok})
}

// SessionAuth gates the books api: requests without a live
// authenticated session are rejected before any side effect.
func (h *Handler) SessionAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			ok, err := h.authSvc.IsAuthenticated(c.Request().Context(), token)
			if err != nil {
				return err
			}
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
