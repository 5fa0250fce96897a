package rbac

const (
	PermQuizParse  = "quiz:parse"
	PermEventsList = "events:list"
)

// Default policy; admin holds every permission.
var RolePermissions = map[string][]string{
	"user": {
		PermQuizParse,
	},
	"admin": {
		"*",
	},
}
