package handler // HTTP handlers of the service

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Root answers with a human-readable liveness string so a browser hit on
// the base URL shows something meaningful.
func Root(c echo.Context) error {
    return c.String(http.StatusOK, "Number reservation server is up. Connect via /ws.")
}
