package models

type Role string // Actor role resolved by the upstream auth layer

const (
	RoleClient Role = "client"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
)

// Identity is the pre-resolved caller identity injected per request.
// The core trusts it and never authenticates directly.
type Identity struct {
	UserID string
	Role   Role
}
