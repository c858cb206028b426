package repository

// UserDirectory возвращает контактные данные пользователей.
// Таблицу users наполняет внешняя система аутентификации, здесь она
// используется только для уведомлений победителей.
type UserDirectory interface {
	EmailByUserID(userID uint) (string, error)
}
