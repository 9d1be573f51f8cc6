package domain

// Actor identifies the caller of every pipeline operation. Identity and
// role checks live outside this module; the pipeline only uses TenantID
// for scoping and UserID for audit fields.
type Actor struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
}
