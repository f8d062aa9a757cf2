package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

var errMissingToken = errors.New("login event carries no token")

// SessionTarget is the login state a session listener drives.
type SessionTarget interface {
	SignIn(token string) error
	SignOut()
}

// SessionListener applies login and logout events published by the auth
// service for one client session.
type SessionListener struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewSessionListener(conn *nats.Conn, log *logger.Logger) *SessionListener {
	return &SessionListener{conn: conn, logger: log.Named("session_listener")}
}

// Listen subscribes to the events of sessionID until the returned stop
// function is called.
func (l *SessionListener) Listen(sessionID string, target SessionTarget) (stop func(), err error) {
	subject := domain.SessionSubjectPrefix + sessionID
	sub, err := l.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := applySessionEvent(msg.Data, target); err != nil {
			l.logger.Warn("SessionListener: event rejected", "subject", subject, "error", err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	l.logger.Debug("SessionListener: listening", "subject", subject)

	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			l.logger.Warn("SessionListener: unsubscribe failed", "subject", subject, "error", err.Error())
		}
	}, nil
}

func applySessionEvent(data []byte, target SessionTarget) error {
	var event domain.SessionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode session event: %w", err)
	}

	switch event.Type {
	case domain.SessionEventLogin:
		// The identity always comes from a verified token, never from user_id.
		if event.Token == "" {
			return errMissingToken
		}
		return target.SignIn(event.Token)
	case domain.SessionEventLogout:
		target.SignOut()
	default:
		return fmt.Errorf("unknown session event type %q", event.Type)
	}
	return nil
}
