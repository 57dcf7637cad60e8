package auth

import "sync"

// PromptNotice reports how the widget's one-tap prompt ended when it could
// not collect a credential.
type PromptNotice interface {
	NotDisplayed() bool
	Skipped() bool
}

// SDK abstracts the third-party single-sign-on widget. The real widget loads
// out-of-band and becomes ready some time after process start, accepts a
// single module-scoped credential callback, and pushes credentials through it
// after a prompt.
type SDK interface {
	// Ready reports whether the widget has finished loading.
	Ready() bool
	// Initialize registers the credential callback. Called at most once.
	Initialize(onCredential func(credential string))
	// Prompt asks the widget to show its sign-in prompt. The notify callback
	// receives a notice when the prompt cannot be shown; a collected
	// credential arrives through the Initialize callback instead.
	Prompt(notify func(PromptNotice)) error
	// DisableAutoSelect turns off automatic account selection on sign-out.
	DisableAutoSelect() error
}

type staticNotice struct {
	notDisplayed bool
	skipped      bool
}

func (n staticNotice) NotDisplayed() bool { return n.notDisplayed }
func (n staticNotice) Skipped() bool      { return n.skipped }

// CredentialSDK is an SDK fed with a pre-issued credential, for environments
// where the interactive widget cannot run (headless CLI, tests). Prompt
// delivers the stored credential through the registered callback; with no
// credential it reports the prompt as not displayed.
type CredentialSDK struct {
	mu           sync.Mutex
	credential   string
	onCredential func(string)
	autoSelect   bool
}

func NewCredentialSDK(credential string) *CredentialSDK {
	return &CredentialSDK{credential: credential, autoSelect: true}
}

func (s *CredentialSDK) Ready() bool { return true }

func (s *CredentialSDK) Initialize(onCredential func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCredential = onCredential
}

func (s *CredentialSDK) Prompt(notify func(PromptNotice)) error {
	s.mu.Lock()
	cred, cb := s.credential, s.onCredential
	s.mu.Unlock()
	if cred == "" || cb == nil {
		notify(staticNotice{notDisplayed: true})
		return nil
	}
	cb(cred)
	return nil
}

func (s *CredentialSDK) DisableAutoSelect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSelect = false
	return nil
}
