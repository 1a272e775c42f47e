package domain

// TokenTypeBearer is the token type advertised to clients.
const TokenTypeBearer = "Bearer"

// TokenPair is returned on login, registration and refresh.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// Identity is the authenticated caller attached to a single request.
type Identity struct {
	Subject     string
	UserID      string
	Name        string
	Plan        Plan
	Authorities []string
}

// HasAuthority reports whether the identity carries the given authority.
func (i *Identity) HasAuthority(authority string) bool {
	if i == nil {
		return false
	}
	for _, a := range i.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
