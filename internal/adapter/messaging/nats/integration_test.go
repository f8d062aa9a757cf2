//go:build integration

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

var testConn *nats.Conn

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "nats",
		Tag:        "2.9",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start NATS resource: %s", err)
	}

	cfg := config.NATSConfig{URL: fmt.Sprintf("nats://%s", resource.GetHostPort("4222/tcp"))}
	if err := pool.Retry(func() error {
		var errRetry error
		testConn, errRetry = NewConnection(cfg, logger.NewNop())
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to NATS: %s", err)
	}

	code := m.Run()

	testConn.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge NATS resource: %s", err)
	}
	os.Exit(code)
}

func TestPublisher_PublishesJSON(t *testing.T) {
	received := make(chan *nats.Msg, 1)
	sub, err := testConn.ChanSubscribe(domain.SubjectSavedToggled, received)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, testConn.Flush())

	pub := NewPublisher(testConn, logger.NewNop())
	event := domain.SavedToggledEvent{RoomID: "r1", UserID: "u1", Saved: true, ToggledAt: time.Now().UTC()}
	require.NoError(t, pub.Publish(context.Background(), domain.SubjectSavedToggled, event))

	select {
	case msg := <-received:
		var got domain.SavedToggledEvent
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "r1", got.RoomID)
		assert.True(t, got.Saved)
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSessionListener_DrivesStateSource(t *testing.T) {
	verifier := auth.NewTokenVerifier("secret")
	src := auth.NewStateSource(verifier, logger.NewNop())
	token, err := verifier.Issue("u1", jwt.RegisteredClaims{})
	require.NoError(t, err)
	listener := NewSessionListener(testConn, logger.NewNop())

	stop, err := listener.Listen("s1", src)
	require.NoError(t, err)
	defer stop()
	require.NoError(t, testConn.Flush())

	pub := NewPublisher(testConn, logger.NewNop())
	require.NoError(t, pub.Publish(context.Background(), domain.SessionSubjectPrefix+"s1",
		domain.SessionEvent{Type: domain.SessionEventLogin, Token: token}))
	assert.Eventually(t, func() bool {
		return src.Current() == domain.LoginState(domain.LoggedIn{UID: "u1"})
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, pub.Publish(context.Background(), domain.SessionSubjectPrefix+"s1",
		domain.SessionEvent{Type: domain.SessionEventLogout}))
	assert.Eventually(t, func() bool {
		return src.Current() == domain.LoginState(domain.NotLoggedIn{})
	}, 5*time.Second, 10*time.Millisecond)
}
