package model

// Session ties one live connection to the identity it was opened with.
// The connection handle itself is owned by the transport layer; the hub
// keys its registry on it.  Several sessions may carry the same email
// (the same person in multiple tabs); the distinct set of emails forms
// the online-users view.
type Session struct {
    UserName  string // display name supplied at connection time
    UserEmail string // identity key supplied at connection time
}
