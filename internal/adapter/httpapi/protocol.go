package httpapi

import (
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/bloc"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

// Inbound command types.
const (
	cmdSignIn      = "sign_in"
	cmdSignOut     = "sign_out"
	cmdToggleSaved = "toggle_saved"
	cmdFullName    = "full_name"
	cmdAddress     = "address"
	cmdPhoneNumber = "phone_number"
	cmdAvatar      = "avatar"
	cmdSubmit      = "submit"
)

// Outbound event types.
const (
	evtSession       = "session"
	evtSavedState    = "saved_state"
	evtSavedMessage  = "saved_message"
	evtFieldError    = "field_error"
	evtAvatar        = "avatar"
	evtLoading       = "loading"
	evtUpdateMessage = "update_message"
	evtError         = "error"
)

type inboundMessage struct {
	Type   string         `json:"type"`
	Token  string         `json:"token,omitempty"`
	RoomID string         `json:"room_id,omitempty"`
	Value  string         `json:"value,omitempty"`
	Avatar *avatarPayload `json:"avatar,omitempty"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// avatarPayload carries the file content base64 encoded on the wire.
type avatarPayload struct {
	Path    string `json:"path"`
	Content []byte `json:"content,omitempty"`
}

// sessionPayload tells the client which id to hand to the auth service for
// login and logout events.
type sessionPayload struct {
	SessionID string `json:"session_id"`
}

type savedStatePayload struct {
	Error     string            `json:"error,omitempty"`
	IsLoading bool              `json:"is_loading"`
	RoomItems []domain.RoomItem `json:"room_items"`
}

type savedMessagePayload struct {
	RoomID string `json:"room_id"`
	Title  string `json:"title,omitempty"`
	Saved  bool   `json:"saved"`
	Error  string `json:"error,omitempty"`
}

// fieldErrorPayload has an empty Error when the field is valid.
type fieldErrorPayload struct {
	Field string `json:"field"`
	Error string `json:"error,omitempty"`
}

type loadingPayload struct {
	Loading bool `json:"loading"`
}

type updateMessagePayload struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func sessionEvent(id string) outboundMessage {
	return outboundMessage{Type: evtSession, Payload: sessionPayload{SessionID: id}}
}

func savedStateEvent(s domain.SavedListState) outboundMessage {
	items := s.RoomItems
	if items == nil {
		items = []domain.RoomItem{}
	}
	return outboundMessage{Type: evtSavedState, Payload: savedStatePayload{
		Error:     errorText(s.Err),
		IsLoading: s.IsLoading,
		RoomItems: items,
	}}
}

func savedMessageEvent(m bloc.ToggleMessage) outboundMessage {
	return outboundMessage{Type: evtSavedMessage, Payload: savedMessagePayload{
		RoomID: m.RoomID,
		Title:  m.Title,
		Saved:  m.Saved,
		Error:  errorText(m.Err),
	}}
}

func fieldErrorEvent(field string, err error) outboundMessage {
	return outboundMessage{Type: evtFieldError, Payload: fieldErrorPayload{Field: field, Error: errorText(err)}}
}

func avatarEvent(f domain.AvatarFile) outboundMessage {
	return outboundMessage{Type: evtAvatar, Payload: avatarPayload{Path: f.Path}}
}

func loadingEvent(loading bool) outboundMessage {
	return outboundMessage{Type: evtLoading, Payload: loadingPayload{Loading: loading}}
}

func updateMessageEvent(m bloc.UpdateMessage) outboundMessage {
	return outboundMessage{Type: evtUpdateMessage, Payload: updateMessagePayload{
		Success: m.Err == nil,
		Kind:    string(m.Kind),
		Error:   errorText(m.Err),
	}}
}

func errorEvent(err error) outboundMessage {
	return outboundMessage{Type: evtError, Payload: errorPayload{Error: err.Error()}}
}
