package util

import (
	"net/http"

	"kritika/internal/app/kritika/entity"
)

// Чистые предикаты доступа. Обработчики и middleware не сравнивают
// роли напрямую - только через эти функции и методы entity.User.

// IsSafeMethod сообщает, является ли метод безопасным (без side effects)
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanWriteCatalog - запись в категории/жанры/произведения разрешена
// только администратору; nil означает анонимный запрос
func CanWriteCatalog(user *entity.User) bool {
	return user != nil && user.IsAdmin()
}

// CanModifyContent - изменять отзыв или комментарий может его автор,
// модератор или администратор
func CanModifyContent(user *entity.User, authorID int64) bool {
	if user == nil {
		return false
	}
	switch {
	case user.ID == authorID:
		return true
	case user.IsModerator():
		return true
	case user.IsAdmin():
		return true
	}
	return false
}

// CanManageUsers - управление пользователями доступно только администратору
func CanManageUsers(user *entity.User) bool {
	return user != nil && user.IsAdmin()
}
