package feedback

import "time"

// Account is the slice of a registered user that the intake core reads.
// Credentials and email belong to the sign-in collaborator and never appear here.
type Account struct {
	Handle            string    `json:"handle"`
	AcceptingMessages bool      `json:"isAcceptingMessages"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewAccount returns an account in its initial state: accepting messages.
func NewAccount(handle string) Account {
	return Account{
		Handle:            handle,
		AcceptingMessages: true,
		CreatedAt:         time.Now().UTC(),
	}
}
