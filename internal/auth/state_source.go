package auth

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/rx"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

// StateSource holds the login state of one client session. It starts
// NotLoggedIn and only emits when the identity actually changes.
type StateSource struct {
	verifier *TokenVerifier
	state    *rx.ValueSubject[domain.LoginState]
	logger   *logger.Logger
}

func NewStateSource(verifier *TokenVerifier, log *logger.Logger) *StateSource {
	return &StateSource{
		verifier: verifier,
		state:    rx.NewValueSubject[domain.LoginState](domain.NotLoggedIn{}, rx.WithEqual(domain.SameLoginState)),
		logger:   log,
	}
}

func (s *StateSource) Current() domain.LoginState {
	return s.state.Value()
}

func (s *StateSource) Changes(ctx context.Context) <-chan domain.LoginState {
	return s.state.Subscribe(ctx)
}

// SignIn verifies token and switches to LoggedIn for its subject.
// On failure the current state is left untouched.
func (s *StateSource) SignIn(token string) error {
	if s.verifier == nil {
		return ErrInvalidToken
	}
	uid, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Warn("StateSource.SignIn: token rejected", "error", err.Error())
		return err
	}
	s.SignInUID(uid)
	return nil
}

// SignInUID trusts uid as already authenticated upstream.
func (s *StateSource) SignInUID(uid string) {
	if s.state.Set(domain.LoggedIn{UID: uid}) {
		s.logger.Info("StateSource: signed in", "user_id", uid)
	}
}

func (s *StateSource) SignOut() {
	if s.state.Set(domain.NotLoggedIn{}) {
		s.logger.Info("StateSource: signed out")
	}
}

// Close ends all Changes streams.
func (s *StateSource) Close() {
	s.state.Close()
}
