package models

// User 代表已登入的使用者
type User struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Admin    bool   `json:"admin,omitempty"`
}
