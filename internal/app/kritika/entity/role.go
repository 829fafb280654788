package entity

// Role - закрытое перечисление ролей пользователя.
// Хранится в БД как строка, но в коде сравнивается только через
// константы и методы ниже.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, входит ли значение в перечисление
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
