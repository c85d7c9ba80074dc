package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/broadcast"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

// FeedMessage is what a Feed pushes to its clients for every announcement.
type FeedMessage struct {
	Owner   string  `json:"owner"`
	Time    float64 `json:"time"`
	TextKey string  `json:"text"`
	Audio   string  `json:"audio,omitempty"`
}

// A Feed is a Presenter that streams announcements to websocket clients.
// Clients that cannot keep up are dropped. Announcements that ask for
// suppressed logs are still streamed.
type Feed struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	lock    sync.Mutex
	clients map[*feedClient]bool
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeed creates a Feed without clients.
func NewFeed(logger zerolog.Logger) *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*feedClient]bool),
	}
}

// NumClients returns the number of connected clients.
func (f *Feed) NumClients() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return len(f.clients)
}

// Announce pushes the announcement to every client without blocking.
func (f *Feed) Announce(a broadcast.Announcement) {
	payload, err := json.Marshal(FeedMessage{
		Owner:   a.Owner,
		Time:    a.Time,
		TextKey: a.TextKey,
		Audio:   a.Audio,
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("cannot encode announcement")
		return
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	for c := range f.clients {
		select {
		case c.send <- payload:
		default:
			f.logger.Warn().Msg("feed client too slow, dropping")
			f.removeLocked(c)
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams announcements
// until the client goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &feedClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	f.lock.Lock()
	f.clients[c] = true
	f.lock.Unlock()

	f.logger.Debug().Str("remote", r.RemoteAddr).Msg("feed client connected")

	go f.writePump(c)
	go f.readPump(c)
}

// Close disconnects every client.
func (f *Feed) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for c := range f.clients {
		f.removeLocked(c)
	}
}

func (f *Feed) remove(c *feedClient) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.removeLocked(c)
}

func (f *Feed) removeLocked(c *feedClient) {
	if !f.clients[c] {
		return
	}

	delete(f.clients, c)
	close(c.send)
}

// readPump only watches for the client going away.
func (f *Feed) readPump(c *feedClient) {
	defer func() {
		f.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug().Err(err).Msg("feed client closed")
			}

			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

var _ broadcast.Presenter = (*Feed)(nil)
