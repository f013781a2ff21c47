package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUID extracts the uid claim injected by the Auth middleware. Its presence
// proves the middleware ran; without it the roster cannot be selected, so the
// request is rejected before any service call.
func ctxUID(c echo.Context) (string, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return uid, nil
}
