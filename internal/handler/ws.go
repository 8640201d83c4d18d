package handler

import (
    "log"
    "net/http"

    "github.com/go-playground/validator/v10"
    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/number-reservation/internal/hub"
    "github.com/iliyamo/number-reservation/internal/model"
    "github.com/iliyamo/number-reservation/internal/protocol"
    "github.com/iliyamo/number-reservation/internal/repository"
)

// WSHandler upgrades GET /ws to a websocket.  The client identifies
// itself through the name and email query parameters; there is no
// authentication, the email is simply the key that groups sessions and
// authorizes release/purchase of reservations made under it.
type WSHandler struct {
    hub        *hub.Hub
    dispatcher *hub.Dispatcher
    store      *repository.ReservationStore
    validate   *validator.Validate
    upgrader   websocket.Upgrader
}

// NewWSHandler wires the websocket endpoint to the realtime core.
func NewWSHandler(h *hub.Hub, d *hub.Dispatcher, store *repository.ReservationStore) *WSHandler {
    return &WSHandler{
        hub:        h,
        dispatcher: d,
        store:      store,
        validate:   validator.New(),
        upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            // Browser clients come from arbitrary origins.
            CheckOrigin: func(*http.Request) bool { return true },
        },
    }
}

// Serve validates the identity parameters, performs the upgrade and runs
// the connection until the peer goes away.  The first frame the client
// receives is always INITIAL_STATE with the current snapshot.
func (h *WSHandler) Serve(c echo.Context) error {
    var params struct {
        Name  string `query:"name" validate:"required"`
        Email string `query:"email" validate:"required,email"`
    }
    if err := c.Bind(&params); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query parameters"})
    }
    if err := h.validate.Struct(params); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a valid email are required"})
    }

    conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the HTTP error response.
        return nil
    }

    client := hub.NewClient(h.hub, conn)
    go client.WritePump()
    // The snapshot for INITIAL_STATE is taken inside Register, under the
    // registry lock, so no state change can fall between the snapshot
    // and the moment broadcasts start reaching this client.
    h.hub.Register(client, model.Session{UserName: params.Name, UserEmail: params.Email}, func() []byte {
        frame, err := protocol.Encode(protocol.TypeInitialState, protocol.ProjectReservations(h.store.Snapshot()))
        if err != nil {
            log.Printf("ws: encode initial state failed: %v", err)
            return nil
        }
        return frame
    })
    log.Printf("ws: %s <%s> connected", params.Name, params.Email)
    h.dispatcher.BroadcastOnlineUsers()

    // Blocks until the connection dies; ReadPump unregisters the client
    // before returning.
    client.ReadPump(func(frame []byte) {
        h.dispatcher.HandleFrame(client, frame)
    })

    log.Printf("ws: %s <%s> disconnected", params.Name, params.Email)
    h.dispatcher.BroadcastOnlineUsers()
    return nil
}
