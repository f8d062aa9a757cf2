package nats

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionTarget struct {
	mock.Mock
}

func (m *MockSessionTarget) SignIn(token string) error {
	return m.Called(token).Error(0)
}

func (m *MockSessionTarget) SignOut() {
	m.Called()
}

func TestApplySessionEvent(t *testing.T) {
	target := new(MockSessionTarget)
	target.On("SignIn", "tok").Return(nil).Once()
	target.On("SignIn", "bad").Return(errors.New("invalid token")).Once()
	target.On("SignOut").Once()

	assert.NoError(t, applySessionEvent([]byte(`{"type":"login","token":"tok"}`), target))
	assert.Error(t, applySessionEvent([]byte(`{"type":"login","token":"bad"}`), target))
	assert.NoError(t, applySessionEvent([]byte(`{"type":"logout"}`), target))

	assert.ErrorIs(t, applySessionEvent([]byte(`{"type":"login"}`), target), errMissingToken)
	assert.Error(t, applySessionEvent([]byte(`{"type":"reboot"}`), target))
	assert.Error(t, applySessionEvent([]byte(`not json`), target))

	target.AssertExpectations(t)
}

func TestApplySessionEvent_LoginWithoutTokenIsRejected(t *testing.T) {
	target := new(MockSessionTarget)

	err := applySessionEvent([]byte(`{"type":"login","user_id":"victim"}`), target)

	assert.ErrorIs(t, err, errMissingToken)
	target.AssertNotCalled(t, "SignIn", mock.Anything)
}

func TestHeaderCarrier(t *testing.T) {
	header := nats.Header{}
	carrier := HeaderCarrier(header)

	carrier.Set("traceparent", "00-abc-def-01")

	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, carrier.Keys())
	assert.Equal(t, "00-abc-def-01", header.Get("traceparent"))
}
