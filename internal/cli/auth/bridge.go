package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	fsrepo "BookDesk/internal/cli/repo/fs"
	"BookDesk/internal/model"
)

var (
	// ErrSDKLoadTimeout: the widget never reported ready within the window.
	ErrSDKLoadTimeout = errors.New("sign-in widget failed to load within timeout")
	// ErrPromptUnavailable: the widget refused to show its prompt.
	ErrPromptUnavailable = errors.New("sign-in prompt not available")
	// ErrCredentialDecode: the received credential payload was malformed.
	ErrCredentialDecode = errors.New("credential payload could not be decoded")
)

// Bridge turns the widget's callback protocol into awaitable operations and
// owns the single process-wide identity slot. Sign-in resolution uses a
// one-shot logged-in / login-error signal pair; listeners are removed on
// every exit path so repeated attempts never leak.
type Bridge struct {
	sdk          SDK
	store        fsrepo.IdentityStore
	log          *zap.Logger
	keepers      map[string]struct{}
	timeout      time.Duration
	pollInterval time.Duration

	restoreOnce sync.Once

	mu          sync.Mutex
	initialized bool
	current     *model.Identity
	nextID      int
	loggedIn    map[int]chan *model.Identity
	loginErr    map[int]chan error
	logoutHooks []func()
}

// NewBridge wires a bridge to the given widget and snapshot store. A nil
// logger disables logging; keeperEmails is the role allow-list.
func NewBridge(sdk SDK, store fsrepo.IdentityStore, keeperEmails []string, timeout time.Duration, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	keepers := make(map[string]struct{}, len(keeperEmails))
	for _, e := range keeperEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			keepers[e] = struct{}{}
		}
	}
	return &Bridge{
		sdk:          sdk,
		store:        store,
		log:          log,
		keepers:      keepers,
		timeout:      timeout,
		pollInterval: 100 * time.Millisecond,
		loggedIn:     make(map[int]chan *model.Identity),
		loginErr:     make(map[int]chan error),
	}
}

// EnsureSDKReady polls the widget at a fixed interval until it reports ready.
// Already-ready resolves immediately; the configured timeout yields
// ErrSDKLoadTimeout.
func (b *Bridge) EnsureSDKReady(ctx context.Context) error {
	if b.sdk.Ready() {
		return nil
	}
	deadline := time.NewTimer(b.timeout)
	defer deadline.Stop()
	tick := time.NewTicker(b.pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrSDKLoadTimeout
		case <-tick.C:
			if b.sdk.Ready() {
				return nil
			}
		}
	}
}

// Initialize waits for widget readiness and registers the credential
// callback. Safe to call repeatedly: the callback is registered once.
func (b *Bridge) Initialize(ctx context.Context) error {
	if err := b.EnsureSDKReady(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return nil
	}
	b.initialized = true
	b.mu.Unlock()
	b.sdk.Initialize(b.handleCredential)
	return nil
}

// RestoreFromStorage loads the persisted identity into the slot. Runs at most
// once per process; a corrupt snapshot is discarded and the bridge proceeds
// unauthenticated.
func (b *Bridge) RestoreFromStorage() {
	b.restoreOnce.Do(func() {
		id, err := b.store.Load()
		if err != nil {
			if errors.Is(err, fsrepo.ErrCorruptIdentity) {
				b.log.Warn("discarding corrupt identity snapshot", zap.Error(err))
				_ = b.store.Clear()
			}
			return
		}
		b.mu.Lock()
		b.current = id
		b.mu.Unlock()
	})
}

// SignIn resolves to a signed-in identity. An identity already in the slot
// resolves immediately with no widget interaction; otherwise the prompt is
// triggered and the call waits for the handshake to land on either signal.
func (b *Bridge) SignIn(ctx context.Context) (*model.Identity, error) {
	if id := b.Current(); id != nil {
		return id, nil
	}

	okID, okCh := b.subscribeLoggedIn()
	errID, errCh := b.subscribeLoginError()
	defer b.unsubscribeLoggedIn(okID)
	defer b.unsubscribeLoginError(errID)

	err := b.sdk.Prompt(func(n PromptNotice) {
		if n.NotDisplayed() || n.Skipped() {
			b.fireLoginError(ErrPromptUnavailable)
		}
	})
	if err != nil {
		return nil, err
	}

	select {
	case id := <-okCh:
		return id, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SignOut clears the slot and the snapshot and fires the logout hooks. The
// local sign-out succeeds even when the widget call fails.
func (b *Bridge) SignOut() {
	if err := b.sdk.DisableAutoSelect(); err != nil {
		b.log.Warn("widget auto-select disable failed", zap.Error(err))
	}
	b.mu.Lock()
	b.current = nil
	hooks := make([]func(), len(b.logoutHooks))
	copy(hooks, b.logoutHooks)
	b.mu.Unlock()
	if err := b.store.Clear(); err != nil {
		b.log.Warn("identity snapshot clear failed", zap.Error(err))
	}
	for _, fn := range hooks {
		fn()
	}
}

// Current returns the identity in the slot, or nil when signed out.
func (b *Bridge) Current() *model.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// IsKeeper derives the keeper role for the signed-in identity from the
// allow-list, case-insensitively. The role gates affordances only; the
// server enforces real authorization.
func (b *Bridge) IsKeeper() bool {
	id := b.Current()
	if id == nil {
		return false
	}
	_, ok := b.keepers[strings.ToLower(id.Email)]
	return ok
}

// OnSignOut registers a hook fired after every sign-out.
func (b *Bridge) OnSignOut(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logoutHooks = append(b.logoutHooks, fn)
}

// handleCredential is the module-scoped widget callback: it decodes the
// credential, fills the slot and the snapshot, and fires logged-in. A
// malformed payload routes to login-error instead of failing the handshake.
func (b *Bridge) handleCredential(credential string) {
	id, err := decodeCredential(credential)
	if err != nil {
		b.log.Warn("credential decode failed", zap.Error(err))
		b.fireLoginError(fmt.Errorf("%w: %v", ErrCredentialDecode, err))
		return
	}
	b.mu.Lock()
	b.current = id
	b.mu.Unlock()
	if err := b.store.Save(id); err != nil {
		b.log.Warn("identity snapshot save failed", zap.Error(err))
	}
	b.fireLoggedIn(id)
}

// decodeCredential extracts the profile from the credential's payload
// segment. The signature is not verified here: the widget already validated
// the token and the backend re-checks it on every mutating call.
func decodeCredential(credential string) (*model.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, err
	}
	str := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	id := &model.Identity{
		SubjectID:  str("sub"),
		Email:      str("email"),
		Name:       str("name"),
		Picture:    str("picture"),
		Credential: credential,
	}
	if id.SubjectID == "" && id.Email == "" {
		return nil, errors.New("payload carries no subject or email")
	}
	return id, nil
}

func (b *Bridge) subscribeLoggedIn() (int, <-chan *model.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan *model.Identity, 1)
	b.loggedIn[b.nextID] = ch
	return b.nextID, ch
}

func (b *Bridge) subscribeLoginError() (int, <-chan error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan error, 1)
	b.loginErr[b.nextID] = ch
	return b.nextID, ch
}

func (b *Bridge) unsubscribeLoggedIn(id int) {
	b.mu.Lock()
	delete(b.loggedIn, id)
	b.mu.Unlock()
}

func (b *Bridge) unsubscribeLoginError(id int) {
	b.mu.Lock()
	delete(b.loginErr, id)
	b.mu.Unlock()
}

func (b *Bridge) fireLoggedIn(id *model.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.loggedIn {
		select {
		case ch <- id:
		default:
		}
	}
}

func (b *Bridge) fireLoginError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.loginErr {
		select {
		case ch <- err:
		default:
		}
	}
}
