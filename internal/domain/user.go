package domain

// UserProfile is the slice of the identity subsystem's user record this
// service reads: translation targets and rendering data. Never written here.
type UserProfile struct {
	ID            string
	Username      string
	Email         string
	PreferredLang string
	Image         string
	Plan          string
}
