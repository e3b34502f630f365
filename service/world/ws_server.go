package world

import (
	"net"
	"net/http"
	"time"

	"PArena/logger"
	"PArena/tools/ids"
	"PArena/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS terminates one WebSocket connection: it assigns the connection
// id, starts the writer pump and runs the read loop until the transport
// closes. Teardown goes through Disconnect so the departure protocol runs
// at most once no matter how the connection dies.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[WS] upgrade error: %v", err)
		return
	}

	connID := ids.GenerateString()
	client := NewClient(connID, ws, s.cfg.SendQueueSize)
	if err := s.conns.Add(client); err != nil {
		logger.Errorf("[WS] track conn=%s: %v", connID, err)
		_ = ws.Close()
		return
	}
	sess := NewSession(client)
	s.metrics.ConnOpened()
	logger.Infof("[WS] connected conn=%s remote=%s", connID, ws.RemoteAddr())

	safe.SafeGo(func() {
		client.WritePump(s.cfg.WriteWait, s.cfg.PingInterval)
	})

	ws.SetReadLimit(s.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	s.readLoop(sess, ws)

	s.Disconnect(sess)
	client.Close()
	s.metrics.ConnClosed()
}

func (s *Server) readLoop(sess *Session, ws *websocket.Conn) {
	connID := sess.ConnID()
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s err=%v", connID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", connID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", connID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Debugf("[WS] bad frame conn=%s err=%v sample=%q len=%d",
				connID, perr, sample, len(data))
			s.metrics.IncRejected("malformed")
			continue
		}

		if frame.Type == FrameUpdateState && !s.limiter.Allow(connID, time.Now()) {
			s.metrics.IncRejected("rate_limited")
			continue
		}

		handler := s.disp.GetHandler(frame.Type)
		if handler == nil {
			s.metrics.IncRejected("unknown_type")
			continue
		}

		if err := handler.Handle(&Context{S: s}, frame, sess); err != nil {
			logger.Warnf("[WS] handle type=%s conn=%s err=%v", frame.Type, connID, err)
			continue
		}

		if sess.State() == SessionClosed {
			// explicit leave; stop reading, the deferred close finishes up
			return
		}
	}
}
