package model

// Identity is the signed-in user's profile derived from the SSO credential.
// JSON tags match the snapshot format persisted by the identity store.
type Identity struct {
	SubjectID  string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	Credential string `json:"credential"` // opaque signed token as received
}
