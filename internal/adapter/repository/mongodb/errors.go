package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	codeUnauthorized         = 13
	codeChangeStreamReplica  = 40573
	codeChangeStreamDisabled = 136
)

// mapError wraps driver errors with the domain sentinel they correspond to.
func mapError(err error) error {
	var cmdErr mongo.CommandError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	case errors.As(err, &cmdErr) && cmdErr.Code == codeUnauthorized:
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	default:
		return err
	}
}

// changeStreamsUnsupported reports whether err means the deployment cannot
// serve change streams, e.g. a standalone server.
func changeStreamsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeChangeStreamReplica || cmdErr.Code == codeChangeStreamDisabled
	}
	return false
}
