package bloc

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/rx"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

// UpdateMessage is the outcome of one Submit. Err is nil on success.
type UpdateMessage struct {
	Err  error
	Kind domain.UpdateErrorKind
}

// ProfileFields seeds the form with the values the user already has.
type ProfileFields struct {
	FullName    string
	Address     string
	PhoneNumber string
}

type commandKind int

const (
	cmdFullName commandKind = iota
	cmdAddress
	cmdPhoneNumber
	cmdAvatar
	cmdSubmit
)

type command struct {
	kind   commandKind
	value  string
	avatar domain.AvatarFile
}

// UpdateUserInfoBloc validates the profile form field by field and submits it
// to the user store, one submission at a time.
type UpdateUserInfoBloc struct {
	auth    domain.AuthSource
	store   domain.UserStore
	logger  *logger.Logger
	metrics *metrics.Metrics

	fullNameErr *rx.ValueSubject[error]
	addressErr  *rx.ValueSubject[error]
	phoneErr    *rx.ValueSubject[error]
	avatar      *rx.ValueSubject[domain.AvatarFile]
	loading     *rx.ValueSubject[bool]
	messages    *rx.PublishSubject[UpdateMessage]
	submitting  rx.Exhaust

	commands chan command
	results  chan error

	// Owned by the event loop.
	fullName    string
	address     string
	phoneNumber string
	avatarFile  *domain.AvatarFile

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	disposer sync.Once
}

func NewUpdateUserInfoBloc(
	auth domain.AuthSource,
	store domain.UserStore,
	initial *ProfileFields,
	log *logger.Logger,
	m *metrics.Metrics,
) *UpdateUserInfoBloc {
	if log == nil {
		log = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &UpdateUserInfoBloc{
		auth:        auth,
		store:       store,
		logger:      log.Named("update_user_info_bloc"),
		metrics:     m,
		fullNameErr: rx.NewEmptyValueSubject(rx.WithEqual(sameError)),
		addressErr:  rx.NewEmptyValueSubject(rx.WithEqual(sameError)),
		phoneErr:    rx.NewEmptyValueSubject(rx.WithEqual(sameError)),
		avatar: rx.NewEmptyValueSubject(rx.WithEqual(func(a, b domain.AvatarFile) bool {
			return a.Path == b.Path
		})),
		loading:  rx.NewValueSubject(false, rx.WithEqual(func(a, b bool) bool { return a == b })),
		messages: rx.NewPublishSubject[UpdateMessage](),
		commands: make(chan command),
		results:  make(chan error),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if initial != nil {
		b.fullName = initial.FullName
		b.address = initial.Address
		b.phoneNumber = initial.PhoneNumber
		b.fullNameErr.Set(ValidateFullName(b.fullName))
		b.addressErr.Set(ValidateAddress(b.address))
		b.phoneErr.Set(ValidatePhoneNumber(b.phoneNumber))
	}

	go b.run()
	return b
}

func (b *UpdateUserInfoBloc) FullNameChanged(fullName string) {
	b.send(command{kind: cmdFullName, value: fullName})
}

func (b *UpdateUserInfoBloc) AddressChanged(address string) {
	b.send(command{kind: cmdAddress, value: address})
}

func (b *UpdateUserInfoBloc) PhoneNumberChanged(phoneNumber string) {
	b.send(command{kind: cmdPhoneNumber, value: phoneNumber})
}

// AvatarChanged selects a new avatar. Selecting the same path again is ignored.
func (b *UpdateUserInfoBloc) AvatarChanged(file domain.AvatarFile) {
	b.send(command{kind: cmdAvatar, avatar: file})
}

func (b *UpdateUserInfoBloc) Submit() {
	b.send(command{kind: cmdSubmit})
}

// FullNameError emits nil when the field is valid. Nothing is emitted for a
// field the user has not touched yet.
func (b *UpdateUserInfoBloc) FullNameError(ctx context.Context) <-chan error {
	return b.fullNameErr.Subscribe(ctx)
}

func (b *UpdateUserInfoBloc) AddressError(ctx context.Context) <-chan error {
	return b.addressErr.Subscribe(ctx)
}

func (b *UpdateUserInfoBloc) PhoneNumberError(ctx context.Context) <-chan error {
	return b.phoneErr.Subscribe(ctx)
}

func (b *UpdateUserInfoBloc) Avatar(ctx context.Context) <-chan domain.AvatarFile {
	return b.avatar.Subscribe(ctx)
}

func (b *UpdateUserInfoBloc) Loading(ctx context.Context) <-chan bool {
	return b.loading.Subscribe(ctx)
}

func (b *UpdateUserInfoBloc) Messages(ctx context.Context) <-chan UpdateMessage {
	return b.messages.Subscribe(ctx)
}

// Dispose ends every stream. A submission in flight completes in the
// background and its outcome is dropped.
func (b *UpdateUserInfoBloc) Dispose() {
	b.disposer.Do(func() {
		b.cancel()
		<-b.done
		b.fullNameErr.Close()
		b.addressErr.Close()
		b.phoneErr.Close()
		b.avatar.Close()
		b.loading.Close()
		b.messages.Close()
	})
}

func (b *UpdateUserInfoBloc) send(cmd command) {
	select {
	case b.commands <- cmd:
	case <-b.ctx.Done():
	}
}

func (b *UpdateUserInfoBloc) run() {
	defer close(b.done)

	for {
		select {
		case <-b.ctx.Done():
			return
		case cmd := <-b.commands:
			b.handle(cmd)
		case err := <-b.results:
			b.finishSubmit(err)
		}
	}
}

func (b *UpdateUserInfoBloc) handle(cmd command) {
	switch cmd.kind {
	case cmdFullName:
		b.fullName = cmd.value
		b.fullNameErr.Set(ValidateFullName(cmd.value))
	case cmdAddress:
		b.address = cmd.value
		b.addressErr.Set(ValidateAddress(cmd.value))
	case cmdPhoneNumber:
		b.phoneNumber = cmd.value
		b.phoneErr.Set(ValidatePhoneNumber(cmd.value))
	case cmdAvatar:
		if b.avatar.Set(cmd.avatar) {
			file := cmd.avatar
			b.avatarFile = &file
		}
	case cmdSubmit:
		b.submit()
	}
}

// submit validates the latest values of all three fields, including those
// never edited, and starts the update unless one is already running.
func (b *UpdateUserInfoBloc) submit() {
	fullNameErr := ValidateFullName(b.fullName)
	addressErr := ValidateAddress(b.address)
	phoneErr := ValidatePhoneNumber(b.phoneNumber)
	b.fullNameErr.Set(fullNameErr)
	b.addressErr.Set(addressErr)
	b.phoneErr.Set(phoneErr)

	if fullNameErr != nil || addressErr != nil || phoneErr != nil {
		b.metrics.SubmissionResult("invalid")
		b.messages.Publish(UpdateMessage{Err: domain.ErrInvalidInformation, Kind: domain.UpdateErrorInvalidInput})
		return
	}

	if !b.submitting.TryAcquire() {
		b.metrics.SubmissionResult("dropped")
		b.logger.Debug("submit dropped, update in flight")
		return
	}

	var uid string
	switch s := b.auth.Current().(type) {
	case domain.LoggedIn:
		uid = s.UID
	case domain.NotLoggedIn:
		b.submitting.Release()
		b.metrics.SubmissionResult("not_logged_in")
		b.messages.Publish(UpdateMessage{Err: domain.ErrNotLoggedIn, Kind: domain.UpdateErrorNotLoggedIn})
		return
	default:
		b.submitting.Release()
		err := domain.UnknownLoginStateError(s)
		b.messages.Publish(UpdateMessage{Err: err, Kind: domain.ClassifyUpdateError(err)})
		return
	}

	update := domain.ProfileUpdate{
		UID:         uid,
		FullName:    b.fullName,
		Address:     b.address,
		PhoneNumber: b.phoneNumber,
		Avatar:      b.avatarFile,
	}
	b.loading.Set(true)
	go b.callUpdate(update)
}

func (b *UpdateUserInfoBloc) callUpdate(update domain.ProfileUpdate) {
	start := time.Now()
	err := b.store.UpdateProfile(context.WithoutCancel(b.ctx), update)
	b.metrics.ObserveRemote("update_profile", start)

	select {
	case b.results <- err:
	case <-b.ctx.Done():
		b.submitting.Release()
		b.logger.Debug("update result discarded after dispose", "user_id", update.UID)
	}
}

func (b *UpdateUserInfoBloc) finishSubmit(err error) {
	b.loading.Set(false)
	b.submitting.Release()

	if err != nil {
		kind := domain.ClassifyUpdateError(err)
		b.logger.Warn("profile update failed", "kind", kind, "error", err)
		b.metrics.SubmissionResult("failed")
		b.messages.Publish(UpdateMessage{Err: domain.NewRemoteOperationError("update_profile", err), Kind: kind})
		return
	}
	b.metrics.SubmissionResult("success")
	b.messages.Publish(UpdateMessage{})
}
