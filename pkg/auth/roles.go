package auth

// Role is the closed set of principal roles known to the system. Inbound
// tokens carrying anything else fail authentication instead of falling
// through string comparisons at call sites.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleRegular         Role = "regular"
	RoleFacilityManager Role = "facility_manager"
	RoleModerator       Role = "moderator"
	RoleAuditor         Role = "auditor"
	RoleServiceAccount  Role = "service_account"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleRegular, RoleFacilityManager, RoleModerator, RoleAuditor, RoleServiceAccount:
		return Role(s), true
	default:
		return "", false
	}
}

// Operation names a protected action for authorization decisions.
type Operation string

const (
	OpCreateBooking     Operation = "booking:create"
	OpListAllBookings   Operation = "booking:list_all"
	OpOverrideBooking   Operation = "booking:override"
	OpForceCancel       Operation = "booking:force_cancel"
	OpReadRoomState     Operation = "room:read_state"
	OpCheckAvailability Operation = "room:check_availability"
)

var allowedRoles = map[Operation][]Role{
	OpCreateBooking:     {RoleAdmin, RoleRegular, RoleFacilityManager},
	OpListAllBookings:   {RoleAdmin, RoleAuditor},
	OpOverrideBooking:   {RoleAdmin},
	OpForceCancel:       {RoleAdmin},
	OpReadRoomState:     {RoleAdmin, RoleRegular, RoleFacilityManager, RoleModerator, RoleAuditor, RoleServiceAccount},
	OpCheckAvailability: {RoleAdmin, RoleRegular, RoleFacilityManager, RoleServiceAccount},
}

// Allowed is a pure function from (role, operation) to an authorization
// verdict. It holds no state and performs no I/O.
func Allowed(role Role, op Operation) bool {
	for _, r := range allowedRoles[op] {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role carries full administrative capability.
func IsAdmin(role Role) bool {
	return role == RoleAdmin
}
