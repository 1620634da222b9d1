package domain

type AuthMethod string

const (
	AuthMethodToken    AuthMethod = "token"
	AuthMethodPassword AuthMethod = "password"
)

type Credentials struct {
	Username string
	Password string
}
