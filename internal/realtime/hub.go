package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/teamcal/pkg/logger"
	"github.com/charlesng35/teamcal/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10

	viewerBufferSize = 32
)

// Message is the JSON frame pushed to viewers of a team.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

// Broadcaster publishes messages to every viewer of a stream.
type Broadcaster interface {
	BroadcastStream(stream string, message Message)
}

// Hub fans team invalidations out to connected viewers. Every websocket follows exactly
// one team stream for its whole lifetime; viewers only send keepalive pings.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*viewer]struct{}
	origins  map[string]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// HubOption customises a Hub.
type HubOption func(*Hub)

// WithAllowedOrigins accepts cross-origin viewers from the listed origins, in addition to
// same-host and loopback pages.
func WithAllowedOrigins(origins ...string) HubOption {
	return func(h *Hub) {
		for _, origin := range origins {
			if host := originHost(origin); host != "" {
				h.origins[host] = struct{}{}
			}
		}
	}
}

// NewHub constructs a realtime hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:   make(map[string]map[*viewer]struct{}),
		origins: make(map[string]struct{}),
		log:     logger.WithModule("realtime"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve upgrades the request and keeps the viewer attached to stream until it disconnects.
func (h *Hub) Serve(stream string, w http.ResponseWriter, r *http.Request) {
	stream = normalizeStream(stream)
	if stream == "" {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("stream", stream), zap.Error(err))
		return
	}

	v := &viewer{
		id:     uuid.NewString(),
		hub:    h,
		stream: stream,
		socket: conn,
		send:   make(chan Message, viewerBufferSize),
	}
	h.join(v)
	metrics.RealtimeConnections.Inc()

	go v.writeLoop()
	v.readLoop()
}

// BroadcastStream delivers message to every viewer of stream. Viewers whose buffer is full
// are disconnected; they reload the calendar when they reconnect.
func (h *Hub) BroadcastStream(stream string, message Message) {
	stream = normalizeStream(stream)
	if stream == "" {
		return
	}
	message.Stream = stream

	h.mu.RLock()
	var lagging []*viewer
	for v := range h.rooms[stream] {
		if !v.deliver(message) {
			lagging = append(lagging, v)
		}
	}
	h.mu.RUnlock()

	for _, v := range lagging {
		h.log.Debug("disconnecting lagging viewer", zap.String("viewer", v.id), zap.String("stream", stream))
		v.close()
	}
}

// Subscribers reports how many viewers follow stream.
func (h *Hub) Subscribers(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[normalizeStream(stream)])
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*viewer
	for _, room := range h.rooms {
		for v := range room {
			all = append(all, v)
		}
	}
	h.mu.RUnlock()

	for _, v := range all {
		v.close()
	}
}

func (h *Hub) join(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[v.stream]
	if room == nil {
		room = make(map[*viewer]struct{})
		h.rooms[v.stream] = room
	}
	room[v] = struct{}{}
}

func (h *Hub) leave(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[v.stream]
	delete(room, v)
	if len(room) == 0 {
		delete(h.rooms, v.stream)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := originHost(origin)
	if host == "" {
		return false
	}
	if host == stripPort(r.Host) || isLoopback(host) {
		return true
	}
	_, ok := h.origins[host]
	return ok
}

type viewer struct {
	id     string
	hub    *Hub
	stream string
	socket *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan Message
	once   sync.Once
}

func (v *viewer) deliver(message Message) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return true
	}
	select {
	case v.send <- message:
		return true
	default:
		return false
	}
}

type clientFrame struct {
	Action string `json:"action"`
}

func (v *viewer) readLoop() {
	defer v.close()

	v.socket.SetReadLimit(maxMessageSize)
	_ = v.socket.SetReadDeadline(time.Now().Add(pongWait))
	v.socket.SetPongHandler(func(string) error {
		return v.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := v.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				v.hub.log.Debug("viewer dropped", zap.String("viewer", v.id), zap.Error(err))
			}
			return
		}

		var frame clientFrame
		if json.Unmarshal(payload, &frame) == nil && strings.EqualFold(strings.TrimSpace(frame.Action), "ping") {
			v.deliver(Message{Stream: v.stream, Event: EventPong})
		}
	}
}

func (v *viewer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.close()
	}()

	for {
		select {
		case message, ok := <-v.send:
			_ = v.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = v.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (v *viewer) close() {
	v.once.Do(func() {
		v.hub.leave(v)

		v.mu.Lock()
		v.closed = true
		close(v.send)
		v.mu.Unlock()

		_ = v.socket.Close()
		metrics.RealtimeConnections.Dec()
	})
}

func originHost(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == "*" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		return strings.ToLower(stripPort(origin))
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func normalizeStream(stream string) string {
	return strings.ToLower(strings.TrimSpace(stream))
}
