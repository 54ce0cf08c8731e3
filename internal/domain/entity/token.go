package entity

// TokenPair is the value handed back after a v2 signup, signin or refresh.
// Neither token is persisted; only a hash of RefreshToken is stored.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	UserID uint64
	Email  string
}
