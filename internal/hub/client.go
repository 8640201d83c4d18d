package hub

import (
    "log"
    "time"

    "github.com/gorilla/websocket"
)

const (
    // writeWait bounds a single socket write.
    writeWait = 10 * time.Second
    // pongWait is how long a client may stay silent before the read side
    // gives up; pings go out a bit more often than that.
    pongWait   = 60 * time.Second
    pingPeriod = (pongWait * 9) / 10
    // maxFrameSize caps inbound frames; the protocol only carries tiny
    // JSON envelopes.
    maxFrameSize = 4096
    // sendBuffer is the per-client fan-out queue.  A client that cannot
    // drain it in time starts losing frames instead of blocking others.
    sendBuffer = 32
)

// Client owns a single websocket connection.  Reads and writes each run
// on their own goroutine; everything the hub fans out goes through the
// buffered send channel so a stalled socket never blocks the hub.
type Client struct {
    hub  *Hub
    conn *websocket.Conn
    send chan []byte
}

// NewClient wraps an upgraded connection.  The caller still has to
// Register it on the hub and start the pumps.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
    return &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
}

// enqueue offers a frame to the client without blocking.  It reports
// false when the send buffer is full; the frame is dropped, not retried.
func (c *Client) enqueue(frame []byte) bool {
    select {
    case c.send <- frame:
        return true
    default:
        return false
    }
}

// ReadPump consumes inbound frames and hands each one to handle.  It
// returns once the peer goes away, after unregistering the client and
// closing the socket.
func (c *Client) ReadPump(handle func(frame []byte)) {
    defer func() {
        c.hub.Unregister(c)
        _ = c.conn.Close()
    }()

    c.conn.SetReadLimit(maxFrameSize)
    _ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        return c.conn.SetReadDeadline(time.Now().Add(pongWait))
    })

    for {
        _, frame, err := c.conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("hub: read failed: %v", err)
            }
            return
        }
        handle(frame)
    }
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with periodic pings.  It exits when the channel is
// closed by Unregister or when a write fails.
func (c *Client) WritePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        _ = c.conn.Close()
    }()

    for {
        select {
        case frame, ok := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
                return
            }
        case <-ticker.C:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
