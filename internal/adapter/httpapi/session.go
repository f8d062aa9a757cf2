package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	natsadapter "github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/bloc"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	defaultWriteWait = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 8 << 20
	sendBuffer       = 64
	profileTimeout   = 5 * time.Second
)

var (
	errUnknownCommand = errors.New("unknown command")
	errMissingRoomID  = errors.New("room_id is required")
)

// ProfileLoader reads the stored profile used to prefill the profile form.
type ProfileLoader interface {
	GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// SessionEvents delivers login and logout events addressed to one session.
type SessionEvents interface {
	Listen(sessionID string, target natsadapter.SessionTarget) (stop func(), err error)
}

type SessionDeps struct {
	Verifier *auth.TokenVerifier
	Rooms    domain.RoomStore
	Users    domain.UserStore
	// Optional.
	Profiles       ProfileLoader
	Events         SessionEvents
	Prices         *domain.PriceFormatter
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	WriteTimeout   time.Duration
}

// SessionHandler upgrades /ws requests and runs one client session per
// connection: a login state, a saved-list bloc and a profile form bloc.
type SessionHandler struct {
	deps     SessionDeps
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu       sync.Mutex
	active   map[*session]struct{}
	closing  bool
	sessions sync.WaitGroup
}

func NewSessionHandler(deps SessionDeps, log *logger.Logger) *SessionHandler {
	if deps.WriteTimeout <= 0 {
		deps.WriteTimeout = defaultWriteWait
	}
	h := &SessionHandler{
		deps:   deps,
		logger: log.Named("ws_session"),
		active: make(map[*session]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *SessionHandler) checkOrigin(r *http.Request) bool {
	if len(h.deps.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.deps.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.Warn("SessionHandler: origin rejected", "origin", origin)
	return false
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("SessionHandler: upgrade failed", "error", err.Error())
		return
	}

	// Minted here so that a client cannot subscribe to another session's
	// login events.
	sessionID := uuid.NewString()
	uid, _ := UserIDFromContext(r.Context())

	s := newSession(conn, sessionID, h.deps, h.logger.With("session_id", sessionID))
	if !h.track(s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.deps.WriteTimeout))
		conn.Close()
		return
	}
	defer h.untrack(s)
	s.run(uid)
}

func (h *SessionHandler) track(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.active[s] = struct{}{}
	h.sessions.Add(1)
	return true
}

func (h *SessionHandler) untrack(s *session) {
	h.mu.Lock()
	delete(h.active, s)
	h.mu.Unlock()
	h.sessions.Done()
}

// Close refuses new sessions, closes the open ones and waits for them to
// dispose their blocs or for ctx to end.
func (h *SessionHandler) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	for s := range h.active {
		s.conn.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type session struct {
	id      string
	conn    *websocket.Conn
	deps    SessionDeps
	logger  *logger.Logger
	auth    *auth.StateSource
	saved   *bloc.SavedListBloc
	profile *bloc.UpdateUserInfoBloc
	send    chan outboundMessage
}

func newSession(conn *websocket.Conn, id string, deps SessionDeps, log *logger.Logger) *session {
	return &session{
		id:     id,
		conn:   conn,
		deps:   deps,
		logger: log,
		auth:   auth.NewStateSource(deps.Verifier, log),
		send:   make(chan outboundMessage, sendBuffer),
	}
}

// run blocks until the client goes away.
func (s *session) run(uid string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.deps.Metrics.SessionOpened()
	s.logger.Info("session opened", "user_id", uid)

	if uid != "" {
		s.auth.SignInUID(uid)
	}
	if s.deps.Events != nil {
		stop, err := s.deps.Events.Listen(s.id, s.auth)
		if err != nil {
			s.logger.Warn("session: event listener unavailable", "error", err.Error())
		} else {
			defer stop()
		}
	}
	// Queued first, so the id is the first frame the client reads.
	s.send <- sessionEvent(s.id)

	s.saved = bloc.NewSavedListBloc(s.auth, s.deps.Rooms, s.deps.Prices, s.logger, s.deps.Metrics)
	s.profile = bloc.NewUpdateUserInfoBloc(s.auth, s.deps.Users, s.initialProfile(ctx, uid), s.logger, s.deps.Metrics)

	var wg sync.WaitGroup
	s.forward(ctx, &wg)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx)
	}()

	s.readLoop()

	cancel()
	s.saved.Dispose()
	s.profile.Dispose()
	s.auth.Close()
	wg.Wait()
	<-writerDone
	s.conn.Close()

	s.deps.Metrics.SessionClosed()
	s.logger.Info("session closed")
}

func (s *session) initialProfile(ctx context.Context, uid string) *bloc.ProfileFields {
	if uid == "" || s.deps.Profiles == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, profileTimeout)
	defer cancel()

	p, err := s.deps.Profiles.GetProfile(ctx, uid)
	if err != nil {
		s.logger.Warn("session: profile not loaded", "user_id", uid, "error", err.Error())
		return nil
	}
	return &bloc.ProfileFields{FullName: p.FullName, Address: p.Address, PhoneNumber: p.PhoneNumber}
}

// forward fans every bloc stream into the send queue.
func (s *session) forward(ctx context.Context, wg *sync.WaitGroup) {
	pipe := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	pipe(func() {
		for st := range s.saved.StateChanges(ctx) {
			s.emit(ctx, savedStateEvent(st))
		}
	})
	pipe(func() {
		for m := range s.saved.Messages(ctx) {
			s.emit(ctx, savedMessageEvent(m))
		}
	})
	fields := map[string]func(context.Context) <-chan error{
		cmdFullName:    s.profile.FullNameError,
		cmdAddress:     s.profile.AddressError,
		cmdPhoneNumber: s.profile.PhoneNumberError,
	}
	for name, stream := range fields {
		name, ch := name, stream(ctx)
		pipe(func() {
			for err := range ch {
				s.emit(ctx, fieldErrorEvent(name, err))
			}
		})
	}
	pipe(func() {
		for f := range s.profile.Avatar(ctx) {
			s.emit(ctx, avatarEvent(f))
		}
	})
	pipe(func() {
		for l := range s.profile.Loading(ctx) {
			s.emit(ctx, loadingEvent(l))
		}
	})
	pipe(func() {
		for m := range s.profile.Messages(ctx) {
			s.emit(ctx, updateMessageEvent(m))
		}
	})
}

func (s *session) emit(ctx context.Context, msg outboundMessage) {
	select {
	case s.send <- msg:
	case <-ctx.Done():
	}
}

func (s *session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("session: read failed", "error", err.Error())
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := s.handle(msg); err != nil {
			s.reply(err)
		}
	}
}

// reply queues an error event without blocking the reader.
func (s *session) reply(err error) {
	select {
	case s.send <- errorEvent(err):
	default:
		s.logger.Warn("session: send queue full, error dropped", "error", err.Error())
	}
}

func (s *session) handle(msg inboundMessage) error {
	switch msg.Type {
	case cmdSignIn:
		return s.auth.SignIn(msg.Token)
	case cmdSignOut:
		s.auth.SignOut()
	case cmdToggleSaved:
		if msg.RoomID == "" {
			return errMissingRoomID
		}
		s.saved.Remove(msg.RoomID)
	case cmdFullName:
		s.profile.FullNameChanged(msg.Value)
	case cmdAddress:
		s.profile.AddressChanged(msg.Value)
	case cmdPhoneNumber:
		s.profile.PhoneNumberChanged(msg.Value)
	case cmdAvatar:
		if msg.Avatar == nil {
			return domain.ErrInvalidAvatar
		}
		s.profile.AvatarChanged(domain.AvatarFile{Path: msg.Avatar.Path, Content: msg.Avatar.Content})
	case cmdSubmit:
		s.profile.Submit()
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, msg.Type)
	}
	return nil
}

func (s *session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.deps.WriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Warn("session: write failed", "type", msg.Type, "error", err.Error())
				s.conn.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.deps.WriteTimeout)); err != nil {
				s.conn.Close()
				return
			}
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(s.deps.WriteTimeout))
			return
		}
	}
}
