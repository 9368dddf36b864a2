package repo

// UserContextStore абстракция для хранения контекста пользователя (последний логин).
type UserContextStore interface {
	SaveLogin(login string) error
	LoadLogin() (string, error)
}

// AuthStore — токен и логин вместе, как их сохраняют login/register.
type AuthStore interface {
	TokenStore
	UserContextStore
	Clear() error
}
