package models

// AuthContext — подтверждённая личность запроса: кто и с какой ролью.
// Живёт только в контексте запроса, нигде не кэшируется и не сохраняется.
type AuthContext struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// IsAdmin — короткая проверка роли
func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

// Credentials — учётные данные, хранятся только в auth-сервисе
type Credentials struct {
	ID           string
	Email        string
	PasswordHash []byte
	UserID       string
}
