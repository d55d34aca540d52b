package domain

import "time"

// User is the slice of the profile document the email pipeline needs: the
// recipient address and the fields merged into template data. Account
// management lives in another service.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     *string   `json:"phone" dynamodbav:"phone"`
	Plan      string    `json:"plan,omitempty" dynamodbav:"plan,omitempty"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// FirstName returns the leading word of Name, or "Friend" when the profile
// has no usable name.
func (u *User) FirstName() string {
	if u == nil || u.Name == "" {
		return "Friend"
	}
	for i := 0; i < len(u.Name); i++ {
		if u.Name[i] == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}
