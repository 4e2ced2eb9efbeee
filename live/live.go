// Package live keeps a dashboard tab's list screens open over a websocket.
// Each connection is one session: its screens, its toasts and its preview
// files live exactly as long as the socket.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/forms"
	"tripdesk/listview"
	"tripdesk/preview"
	"tripdesk/session"
	"tripdesk/toast"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	maxMessageSize = 64 << 10
	inboxSize      = 64
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Deps are shared by every session.
type Deps struct {
	Client     *apiclient.Client
	Hub        *toast.Hub
	Previews   *preview.Store
	Recorder   activity.Recorder
	OnMutation func(ctx context.Context, resource string)
	Debounce   time.Duration
	// Base bounds every session; it is cancelled on shutdown.
	Base context.Context
}

type inbound struct {
	Action    string          `json:"action"`
	Screen    string          `json:"screen"`
	ID        string          `json:"id,omitempty"`
	Key       string          `json:"key,omitempty"`
	Value     string          `json:"value,omitempty"`
	Page      int             `json:"page,omitempty"`
	Index     int             `json:"index,omitempty"`
	Confirmed bool            `json:"confirmed,omitempty"`
	Current   bool            `json:"current,omitempty"`
	Form      json.RawMessage `json:"form,omitempty"`
}

type outbound struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Screen  string `json:"screen,omitempty"`
	State   any    `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
}

// Session is one connected tab.
type Session struct {
	ID string

	deps   Deps
	client *apiclient.Client
	hc     *toast.Client
	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan inbound
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	screens map[string]listview.Screen
	closed  bool

	// editors are only touched by the inbox goroutine.
	editors map[string]*forms.Editor
}

func newSession(deps Deps, data *session.Data) *Session {
	base := deps.Base
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(session.NewContext(base, data))
	id := uuid.New().String()
	token := ""
	if data != nil {
		token = data.AccessToken
	}
	return &Session{
		ID:      id,
		deps:    deps,
		client:  deps.Client.WithToken(token),
		hc:      &toast.Client{Send: make(chan []byte, 64), Room: id},
		ctx:     ctx,
		cancel:  cancel,
		inbox:   make(chan inbound, inboxSize),
		done:    make(chan struct{}),
		screens: make(map[string]listview.Screen),
		editors: make(map[string]*forms.Editor),
	}
}

func (s *Session) send(msg outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[live] %s marshal %s: %v", s.ID, msg.Type, err)
		return
	}
	s.deps.Hub.Send(s.ID, data)
}

func (s *Session) pushState(name string) {
	s.mu.Lock()
	screen := s.screens[name]
	s.mu.Unlock()
	if screen == nil {
		return
	}
	s.send(outbound{Type: "state", Screen: name, State: screen.Snapshot()})
}

func (s *Session) fail(name string, err error) {
	if err == nil || errors.Is(err, listview.ErrSuperseded) || errors.Is(err, listview.ErrClosed) || errors.Is(err, context.Canceled) {
		return
	}
	s.send(outbound{Type: "error", Screen: name, Message: apiclient.Message(err, err.Error())})
}

// screen returns the open screen called name, opening it when create is set.
func (s *Session) screen(name string, create bool) (listview.Screen, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, listview.ErrClosed
	}
	if sc, ok := s.screens[name]; ok {
		return sc, false, nil
	}
	if !create {
		return nil, false, errors.New("screen " + name + " is not open")
	}
	sc, err := listview.Open(s.ctx, s.client, name, listview.Options{
		Debounce:   s.deps.Debounce,
		Notifier:   toast.RoomNotifier{Hub: s.deps.Hub, Room: s.ID},
		Recorder:   s.deps.Recorder,
		OnChange:   func() { s.pushState(name) },
		OnMutation: s.deps.OnMutation,
	})
	if err != nil {
		return nil, false, err
	}
	s.screens[name] = sc
	return sc, true, nil
}

func (s *Session) closeScreen(name string) {
	s.mu.Lock()
	sc := s.screens[name]
	delete(s.screens, name)
	s.mu.Unlock()
	if sc != nil {
		sc.Close()
	}
	s.send(outbound{Type: "closed", Screen: name})
}

// handle applies one inbound action. Actions are handled one at a time in
// the order they arrived, so a screen's query always reflects the last
// message; only the network calls run in the background, and the screen
// keeps the newest load.
func (s *Session) handle(in inbound) {
	if editorActions[in.Action] {
		s.handleEditor(in)
		return
	}
	if in.Action == "close" {
		s.closeScreen(in.Screen)
		return
	}

	sc, opened, err := s.screen(in.Screen, in.Action == "open")
	if err != nil {
		s.fail(in.Screen, err)
		return
	}

	switch in.Action {
	case "open":
		if !opened {
			s.pushState(in.Screen)
			return
		}
		s.background(in.Screen, sc.Load)
	case "refresh":
		s.background(in.Screen, sc.Load)
	case "search":
		sc.SetSearch(in.Value)
	case "filter":
		if err := sc.ApplyFilter(in.Key, in.Value); err != nil {
			s.fail(in.Screen, err)
			return
		}
		s.background(in.Screen, sc.Load)
	case "page":
		sc.ApplyPage(in.Page)
		s.background(in.Screen, sc.Load)
	case "next":
		if sc.ApplyStep(1) {
			s.background(in.Screen, sc.Load)
		}
	case "prev":
		if sc.ApplyStep(-1) {
			s.background(in.Screen, sc.Load)
		}
	case "delete":
		s.background(in.Screen, func(ctx context.Context) error {
			return sc.Delete(ctx, in.ID, in.Confirmed)
		})
	case "feature":
		s.background(in.Screen, func(ctx context.Context) error {
			return sc.ToggleFeature(ctx, in.ID, in.Current)
		})
	default:
		s.fail(in.Screen, errors.New("unknown action "+in.Action))
	}
}

func (s *Session) background(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fail(name, fn(s.ctx))
	}()
}

// run drains the inbox until readPump closes it.
func (s *Session) run() {
	defer close(s.done)
	for in := range s.inbox {
		s.handle(in)
	}
}

// teardown closes every screen and revokes the session's previews.
func (s *Session) teardown() {
	s.mu.Lock()
	s.closed = true
	screens := s.screens
	s.screens = map[string]listview.Screen{}
	s.mu.Unlock()

	s.cancel()
	close(s.inbox)
	<-s.done
	for _, sc := range screens {
		sc.Close()
	}
	for _, ed := range s.editors {
		ed.Close()
	}
	s.wg.Wait()
	if s.deps.Previews != nil {
		if n := s.deps.Previews.RevokeOwner(s.ID); n > 0 {
			log.Printf("[live] %s released %d previews", s.ID, n)
		}
	}
	s.deps.Hub.Unregister(s.hc)
}

func writePump(conn *websocket.Conn, c *toast.Client) {
	defer conn.Close()
	for msg := range c.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func readPump(conn *websocket.Conn, s *Session) {
	defer func() {
		s.teardown()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Printf("[live] %s invalid payload: %v", s.ID, err)
			s.send(outbound{Type: "error", Message: "Invalid message"})
			continue
		}
		if in.Screen == "" {
			s.send(outbound{Type: "error", Message: "screen is required"})
			continue
		}
		select {
		case s.inbox <- in:
		case <-s.ctx.Done():
			return
		}
	}
}

// Handler serves GET /ws/dashboard. The first message on the socket is
// {"type":"hello","session":<id>}; uploads tagged with that id are revoked
// when the socket closes.
func Handler(deps Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[live] upgrade: %v", err)
			return
		}

		s := newSession(deps, session.FromContext(r.Context()))
		deps.Hub.Register(s.hc)
		s.send(outbound{Type: "hello", Session: s.ID})
		log.Printf("[live] %s opened by %s", s.ID, session.FromContext(r.Context()).Actor())

		go writePump(conn, s.hc)
		go s.run()
		readPump(conn, s)
		log.Printf("[live] %s closed", s.ID)
	}
}
