package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleCliente = "cliente"
)

// User representa un usuario autenticable del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	Role         string // admin, cliente
	CreatedAt    time.Time
}

// Identity es la referencia opaca al usuario autenticado que el núcleo propaga
// a pedidos y movimientos. Se obtiene del token, no de la base de datos.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin indica si la identidad tiene rol administrador.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
