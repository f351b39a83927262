package repository

type User struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

type Session struct {
	TokenHash string
	Username  string
	Email     string
	Name      string
	Picture   string
	Provider  string
	CreatedAt int64
	Expiry    int64
}
