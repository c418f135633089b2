package utils

import "floatchat.com/core/internal/store"

// knownIdentities maps specific demo account emails to their display
// identity. Any other email resolves to the generic researcher identity.
var knownIdentities = map[string]store.User{
	"labbai.irfan@floatchat.com": {
		DisplayName:    "Labbai Irfan",
		AvatarInitials: "LI",
	},
}

// IdentityForEmail derives the display identity for a logged-in email.
func IdentityForEmail(email string) store.User {
	if u, ok := knownIdentities[email]; ok {
		u.Email = email
		return u
	}
	return store.User{
		DisplayName:    "Ocean Researcher",
		Email:          email,
		AvatarInitials: "OR",
	}
}
