package auth

// Action names a capability checked against a role. Keeping the mapping in
// one table lets tests enumerate every allowed/denied combination.
type Action string

const (
	// ActionAssetRead covers dashboard, lists and qr data.
	ActionAssetRead Action = "asset:read"
	// ActionAssetWrite covers create/update/delete/status and archive ops.
	ActionAssetWrite Action = "asset:write"
	// ActionDirectoryWrite covers building/department/user/type/name
	// management.
	ActionDirectoryWrite Action = "directory:write"
	// ActionAuthManage covers login-account administration.
	ActionAuthManage Action = "auth:manage"
)

var policy = map[Action]map[string]bool{
	ActionAssetRead:      {"admin": true, "purchasing": true},
	ActionAssetWrite:     {"admin": true, "purchasing": true},
	ActionDirectoryWrite: {"admin": true},
	ActionAuthManage:     {"admin": true},
}

// Allow reports whether role may perform action. Unknown actions and
// unknown roles are denied.
func Allow(action Action, role string) bool {
	roles, ok := policy[action]
	if !ok {
		return false
	}
	return roles[role]
}

// Actions returns every known action, for test enumeration.
func Actions() []Action {
	return []Action{ActionAssetRead, ActionAssetWrite, ActionDirectoryWrite, ActionAuthManage}
}
