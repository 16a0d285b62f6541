package entity

// Roles conocidos. La autenticación es externa; el token solo trae el rol y el departamento.
const (
	RoleAdmin       = "admin"
	RoleBodeguero   = "bodeguero"   // bodega
	RoleVendedor    = "vendedor"    // comercial
	RoleAgronomo    = "agronomo"    // agricultura
	RoleVeterinario = "veterinario" // ganadería
)

// Caller identidad autenticada que ejecuta la operación.
type Caller struct {
	UserID     string
	Role       string
	Department string
}
