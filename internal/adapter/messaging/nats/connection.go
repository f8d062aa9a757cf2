package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
)

const defaultConnectWait = 5 * time.Second

func NewConnection(cfg config.NATSConfig, log *logger.Logger) (*nats.Conn, error) {
	connectWait := cfg.ConnectTimeout
	if connectWait <= 0 {
		connectWait = defaultConnectWait
	}

	opts := []nats.Option{
		nats.Name("room-service"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", "subject", subject, "error", err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	log.Info("NATS connected", "url", nc.ConnectedUrl())
	return nc, nil
}
