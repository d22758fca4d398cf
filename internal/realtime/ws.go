package realtime

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionResolver turns a session token into a user id; invalid or expired
// tokens return an error and the connection stays anonymous.
type SessionResolver interface {
	ResolveToken(token string) (string, error)
}

// wsConn serializes writes: the hub and the read loop both write to the
// socket, and gorilla connections allow only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

type clientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Handler upgrades the request and runs the connection's read loop.
// Protocol: {"type":"auth","token":...} re-homes the connection and is
// acknowledged with {"type":"auth_ok"} only on success; {"type":"ping"}
// gets {"type":"pong"}. Transport closure unregisters.
func Handler(hub *Hub, sessions SessionResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}
		conn := &wsConn{conn: raw}
		hub.Register(conn, "")
		defer func() {
			hub.Unregister(conn)
			_ = conn.Close()
		}()

		for {
			var msg clientMessage
			if err := raw.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("websocket read error")
				}
				return
			}
			switch msg.Type {
			case "auth":
				userID, err := sessions.ResolveToken(msg.Token)
				if err != nil {
					// Unknown or expired token: ignore, stay anonymous.
					continue
				}
				hub.Authenticate(conn, userID)
				_ = conn.WriteJSON(map[string]string{"type": "auth_ok"})
			case "ping":
				_ = conn.WriteJSON(map[string]string{"type": "pong"})
			}
		}
	}
}
