package stream

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eapache/channels"
	"github.com/gobwas/glob"
	"github.com/gorilla/websocket"
	msgpack "github.com/vmihailenco/msgpack"

	"github.com/termlog/cirstore/ptystore"
	"github.com/termlog/cirstore/utils/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errNotInitialized = errors.New("stream is not initialized")

var catalog *Catalog
var send *channels.InfiniteChannel
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Catalog maintains the set of active subscribers
type Catalog struct {
	sync.RWMutex
	subs map[*Subscriber]struct{}
}

// Add a new subscriber to the catalog
func (sc *Catalog) Add(sub *Subscriber) {
	sc.Lock()
	defer sc.Unlock()

	sc.subs[sub] = struct{}{}
}

// Remove a subscriber from the catalog
func (sc *Catalog) Remove(sub *Subscriber) {
	sc.Lock()
	defer sc.Unlock()

	delete(sc.subs, sub)
}

// Len returns the number of connected subscribers
func (sc *Catalog) Len() int {
	sc.RLock()
	defer sc.RUnlock()

	return len(sc.subs)
}

// NewCatalog initializes the stream catalog
func NewCatalog() *Catalog {
	return &Catalog{
		subs: map[*Subscriber]struct{}{},
	}
}

// Subscriber includes the connection, and streams to
// manage a given stream client
type Subscriber struct {
	sync.RWMutex
	c       *websocket.Conn
	done    chan struct{}
	streams map[string]glob.Glob
}

// Subscribed matches the subscriber's subscribed streams
// with the supplied <screenId>/<lineId> key.
func (s *Subscriber) Subscribed(key string) bool {
	s.RLock()
	defer s.RUnlock()
	for _, g := range s.streams {
		if g.Match(key) {
			return true
		}
	}
	return false
}

// SubscribeMessage is an inbound message for the client
// to subscribe to streams
type SubscribeMessage struct {
	Streams []string `msgpack:"streams"`
}

// ErrorMessage is used to report errors when a client
// subscribes to invalid streams
type ErrorMessage struct {
	Error string `msgpack:"error"`
}

func (s *Subscriber) handleOutbound(buf []byte) error {
	// prevents concurrent write to the websocket connection
	s.Lock()
	defer s.Unlock()
	if err := s.c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.c.WriteMessage(websocket.BinaryMessage, buf)
}

func (s *Subscriber) handleInbound(msg SubscribeMessage) error {
	if len(msg.Streams) == 0 {
		return nil
	}
	// validate each stream before modifying the subscriber's stream map
	m := map[string]glob.Glob{}
	for _, stream := range msg.Streams {
		g, err := compileStream(stream)
		if err != nil {
			return err
		}
		m[stream] = g
	}

	// prevents concurrent read/write of stream map
	s.Lock()
	defer s.Unlock()
	s.streams = m
	return nil
}

var streamShape = glob.MustCompile("*/*", '/')

func compileStream(stream string) (glob.Glob, error) {
	if !streamShape.Match(stream) {
		return nil, fmt.Errorf("%s is an invalid stream", stream)
	}
	g, err := glob.Compile(stream, '/')
	if err != nil {
		return nil, fmt.Errorf("%s is an invalid stream: %w", stream, err)
	}
	return g, nil
}

func (s *Subscriber) consume() {
	defer func() {
		catalog.Remove(s)
		close(s.done)
	}()

	s.c.SetPongHandler(func(string) error {
		return s.c.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, buf, err := s.c.ReadMessage()

		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("unexpected websocket closure (%v)", err)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage, websocket.BinaryMessage:
			m := SubscribeMessage{}

			if err = msgpack.Unmarshal(buf, &m); err != nil {
				log.Error("failed to unmarshal inbound stream message (%v)", err)
				continue
			}
			if err := s.handleInbound(m); err != nil {
				buf, _ = msgpack.Marshal(ErrorMessage{Error: err.Error()})
			}
			if err := s.handleOutbound(buf); err != nil {
				log.Error("failed to send stream message (%v)", err)
			}
		case websocket.CloseMessage:
			return
		}
	}
}

func (s *Subscriber) produce() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Lock()
			err := s.c.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
			s.Unlock()
			if err != nil {
				log.Debug("failed to ping stream listener (%v)", err)
			}
		case <-s.done:
			return
		}
	}
}

func stream(out <-chan interface{}, cat *Catalog) {
	for v := range out {
		payload, ok := v.(Payload)
		if !ok {
			continue
		}

		buf, err := msgpack.Marshal(payload)
		if err != nil {
			log.Error("failed to marshal outbound stream payload (%v)", err)
			continue
		}

		cat.RLock()

		for s := range cat.subs {
			if s.Subscribed(payload.Key) {
				if err := s.handleOutbound(buf); err != nil {
					log.Error("failed to stream outbound (%s)", err)
				}
			}
		}

		cat.RUnlock()
	}
}

// Payload is used to send data over the websocket
type Payload struct {
	Key  string      `msgpack:"key"`
	Data interface{} `msgpack:"data"`
}

// Push sends data over the stream interface
func Push(key string, data interface{}) error {
	if send == nil {
		return errNotInitialized
	}
	send.In() <- Payload{Key: key, Data: data}
	return nil
}

// Key is the stream key of a line's output.
func Key(screenId, lineId string) string {
	return screenId + "/" + lineId
}

// Publisher pushes pty output updates to stream subscribers.
type Publisher struct{}

func (Publisher) Publish(update *ptystore.PtyDataUpdate) {
	if err := Push(Key(update.ScreenId, update.LineId), update); err != nil {
		log.Debug("dropping pty update for %s/%s: %v", update.ScreenId, update.LineId, err)
	}
}

// Initialize builds the send channel as well as the catalog, and
// must be called before any data flows over the stream interface
func Initialize() {
	if send != nil {
		send.Close()
	}
	send = channels.NewInfiniteChannel()
	catalog = NewCatalog()

	go stream(send.Out(), catalog)
}

// Subscribers returns the number of connected stream listeners
func Subscribers() int {
	if catalog == nil {
		return 0
	}
	return catalog.Len()
}

// Handler hooks into the HTTP interface and handles the incoming
// streaming requests, and upgrades the connection
func Handler(w http.ResponseWriter, r *http.Request) {
	if catalog == nil {
		http.Error(w, errNotInitialized.Error(), http.StatusServiceUnavailable)
		return
	}

	// upgrade the socket
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade stream socket (%s)", err)
		return
	}

	// build the subscriber
	s := &Subscriber{
		c:    ws,
		done: make(chan struct{}),
	}

	log.Info("new stream listener: %v", ws.RemoteAddr().String())

	catalog.Add(s)

	// begin streaming
	go s.consume()
	go s.produce()
}
