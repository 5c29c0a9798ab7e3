package constants

// User roles
const (
	RoleAdmin       = "ADM"
	RolePastor      = "PASTOR"
	RoleSecretary   = "SEC"
	RoleAudiovisual = "AUDIOVISUAL"
	RoleMember      = "MEMBER"

	// Special role marker: any authenticated user
	RoleAny = "any"
)

// Role groups for convenience
var (
	// ApproverRoles may approve or reject booking requests.
	ApproverRoles = []string{RoleAdmin, RolePastor}

	// ExecutorRoles may execute approved requests.
	ExecutorRoles = []string{RoleSecretary, RoleAudiovisual}

	// InventoryManagerRoles may create/update/delete inventory items.
	InventoryManagerRoles = []string{RoleAdmin, RoleSecretary, RolePastor}
)
