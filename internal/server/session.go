package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/selection"
	"github.com/matsen/citegraph/internal/viz"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// ViewMessage is sent to the renderer after every change of its session.
type ViewMessage struct {
	selection.View
	Elements viz.CytoscapeElements `json:"elements"`
	Popular  []paper.SearchEntry   `json:"popular"`
}

// session is one websocket connection with its own selection controller.
type session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	ctrl   *selection.Controller
	send   chan []byte
	done   chan struct{}
	logger *log.Logger

	closeOnce sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	id := uuid.NewString()
	sess := &session{
		id:     id,
		server: s,
		conn:   conn,
		ctrl:   selection.NewController(s.store, s.opts.Graph),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logging.With("session", id),
	}
	s.addSession(sess)
	sess.ctrl.OnChange(sess.push)

	sess.logger.Info("session opened", "remote", r.RemoteAddr)

	go sess.writePump()
	sess.push(sess.ctrl.View())
	go sess.readPump()
}

// push queues view for delivery. It runs under the controller lock, so it never blocks;
// a peer too slow to drain its buffer is disconnected.
func (sess *session) push(view selection.View) {
	msg := ViewMessage{
		View:     view,
		Elements: view.Graph.ToCytoscape(),
		Popular:  []paper.SearchEntry{},
	}
	if view.Snapshot != nil {
		msg.Popular = sess.server.popular(view.Snapshot)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		sess.logger.Error("encoding view", "err", err)
		return
	}

	select {
	case sess.send <- data:
	case <-sess.done:
	default:
		sess.logger.Warn("send buffer full, closing session")
		go sess.close()
	}
}

func (sess *session) readPump() {
	defer sess.close()

	sess.conn.SetReadLimit(maxMessageSize)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				sess.logger.Warn("websocket read error", "err", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			sess.logger.Debug("ignoring non-text message")
			continue
		}

		ev, err := selection.DecodeEvent(message)
		if err != nil {
			sess.logger.Warn("ignoring malformed event", "err", err)
			continue
		}
		sess.server.metrics.Events.WithLabelValues(ev.Type()).Inc()
		sess.ctrl.Dispatch(ev)
	}
}

func (sess *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.conn.Close()
	}()

	for {
		select {
		case <-sess.done:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			sess.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-sess.send:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				sess.logger.Warn("write failed", "err", err)
				go sess.close()
				return
			}

		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				go sess.close()
				return
			}
		}
	}
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		sess.ctrl.Close()
		sess.server.removeSession(sess)
		close(sess.done)
		sess.logger.Info("session closed")
	})
}
