package models

// User is an account on the marketplace. Users are immutable after signup;
// no update or delete operation exists.
type User struct {
	// RecordID is the store-assigned row identifier. It is store-internal
	// and never embedded in other entities.
	RecordID string `json:"-"`
	// UserID is the stable public identity referenced by products and
	// orders.
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

const (
	userFieldUserID   = "userId"
	userFieldEmail    = "email"
	userFieldPassword = "password"
)

// UserFields maps a user to the store's column names.
func UserFields(u *User) map[string]any {
	return map[string]any{
		userFieldUserID:   u.UserID,
		userFieldEmail:    u.Email,
		userFieldPassword: u.PasswordHash,
	}
}

// UserFromFields builds a user from a store record.
func UserFromFields(recordID string, fields map[string]any) *User {
	return &User{
		RecordID:     recordID,
		UserID:       stringField(fields, userFieldUserID),
		Email:        stringField(fields, userFieldEmail),
		PasswordHash: stringField(fields, userFieldPassword),
	}
}
