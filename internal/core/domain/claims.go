package domain

import "time"

// Identity is the input to token issuance.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// Claims is the verified content of an access token. It is a snapshot taken
// at issuance: later changes to the user are not reflected until a new token
// is issued.
type Claims struct {
	TokenID   string
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessToken is a signed bearer token together with its expiry.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}
