package model

type User struct {
	ID       int64      `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     GlobalRole `json:"role"`
}
