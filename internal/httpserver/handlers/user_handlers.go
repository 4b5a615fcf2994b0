package handlers

import (
	"famlink/internal/models"
	"famlink/internal/validate"
)

var users = resource{
	singular: "user",
	plural:   "users",
	title:    "User",
	conflict: "User already exists",
}

const (
	listUsersSQL = `SELECT * FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC`

	getUserSQL = `SELECT * FROM users WHERE id = ? AND deleted_at IS NULL`

	createUserSQL = `INSERT INTO users (tenant_id, external_auth_id, email, name, role)
VALUES (?, ?, ?, ?, ?) RETURNING *`

	updateUserSQL = `UPDATE users SET name = COALESCE(?, name), role = COALESCE(?, role), updated_at = NOW()
WHERE id = ? AND deleted_at IS NULL RETURNING *`

	deleteUserSQL = `UPDATE users SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL RETURNING *`
)

func (h *Handlers) Users() Set {
	return Set{
		List: list[models.User](h, users, listUsersSQL),
		Get:  get[models.User](h, users, getUserSQL),
		Create: create[models.User](h, users, validate.UserCreate, createUserSQL, func(v validate.Values) []any {
			return []any{v.String("tenant_id"), v.String("external_auth_id"), v.String("email"), v.String("name"), v.String("role")}
		}),
		Update: update[models.User](h, users, validate.UserUpdate, updateUserSQL, func(v validate.Values) []any {
			return []any{v.String("name"), v.String("role")}
		}),
		Delete: remove[models.User](h, users, deleteUserSQL),
	}
}
