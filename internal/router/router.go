package router // route registration for the reservation server

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/number-reservation/internal/handler"
)

// RegisterRoutes wires every route of the service onto the provided Echo
// instance.  The rate limiter only guards the websocket handshake; the
// liveness endpoints stay cheap and unthrottled.
func RegisterRoutes(e *echo.Echo, ws *handler.WSHandler, rateLimit echo.MiddlewareFunc) {
    // Liveness endpoints for load balancers and curious browsers.
    e.GET("/healthz", handler.Health)
    e.GET("/", handler.Root)

    // The realtime endpoint; everything after the handshake is frames.
    e.GET("/ws", ws.Serve, rateLimit)
}
