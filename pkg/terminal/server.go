package terminal

import (
	"net/http"
	"time"

	"github.com/fatman2021/pcbasic/pkg/configuration"
	"github.com/fatman2021/pcbasic/pkg/logger"
	"github.com/fatman2021/pcbasic/pkg/session"
	"github.com/fatman2021/pcbasic/pkg/virtualfs"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server accepts websocket consoles and wires each one up as a device
// session.
type Server struct {
	vfs      *virtualfs.VFS
	upgrader websocket.Upgrader

	// OnSession runs the session once the console is connected. It is
	// called on its own goroutine; the connection closes when it
	// returns.
	OnSession func(*session.Session, *Console)
}

// NewServer builds a terminal server on the given filesystem.
func NewServer(vfs *virtualfs.VFS) *Server {
	maxMessageKB := configuration.GetInt("Network", "max_message_size_kb", 64)
	return &Server{
		vfs: vfs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessageKB * 1024,
			WriteBufferSize: maxMessageKB * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleTerminal is the websocket endpoint. Each connection gets a
// fresh session; a valid token on the request resumes its session id.
func (srv *Server) HandleTerminal(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WebSocketError("upgrade failed: %v", err)
		return
	}

	sessionID := uuid.NewString()
	if tokenString, err := ExtractTokenFromRequest(r); err == nil {
		if claims, err := ValidateSessionToken(tokenString); err == nil {
			sessionID = claims.SessionID
		}
	}

	token, err := GenerateSessionToken(sessionID)
	if err != nil {
		logger.WebSocketError("session %s: %v", sessionID, err)
		conn.Close()
		return
	}

	buffer := configuration.GetInt("Network", "max_channel_buffer", 10000)
	out := make(chan Message, buffer)
	console := NewConsole(
		configuration.GetInt("Devices", "screen_width", 80),
		configuration.GetInt("Devices", "screen_height", 25),
		buffer,
		func(m Message) {
			select {
			case out <- m:
			default:
				logger.WebSocketWarn("session %s: output buffer full, dropping frame", sessionID)
			}
		},
	)
	sess := session.New(sessionID, srv.vfs, console, console)

	done := make(chan struct{})
	go srv.writePump(conn, out, done, sessionID)

	out <- Message{Type: MessageTypeSession, SessionID: sessionID, Token: token}
	logger.WebSocketInfo("session %s connected from %s", sessionID, r.RemoteAddr)

	if srv.OnSession != nil {
		go func() {
			srv.OnSession(sess, console)
			conn.Close()
		}()
	}

	srv.readPump(conn, console, sessionID)

	console.Close()
	sess.CloseAll()
	close(done)
	conn.Close()
	logger.WebSocketInfo("session %s disconnected", sessionID)
}

// readPump consumes client frames until the connection drops.
func (srv *Server) readPump(conn *websocket.Conn, console *Console, sessionID string) {
	maxMessageKB := configuration.GetInt("Network", "max_message_size_kb", 64)
	pongTimeout := configuration.GetDuration("Network", "pong_timeout", 90*time.Second)
	conn.SetReadLimit(int64(maxMessageKB * 1024))
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WebSocketWarn("session %s read: %v", sessionID, err)
			}
			return
		}
		switch msg.Type {
		case MessageTypeKey:
			console.PushKey(msg)
		default:
			logger.WebSocketDebug("session %s: ignoring frame type %d", sessionID, msg.Type)
		}
	}
}

// writePump sends queued frames and keeps the connection alive with
// pings.
func (srv *Server) writePump(conn *websocket.Conn, out <-chan Message, done <-chan struct{}, sessionID string) {
	writeWait := configuration.GetDuration("Network", "write_wait_timeout", 10*time.Second)
	pongTimeout := configuration.GetDuration("Network", "pong_timeout", 90*time.Second)
	ticker := time.NewTicker(pongTimeout * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case msg := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.WebSocketWarn("session %s write: %v", sessionID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
