package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"quiz:submit",
		"progress:view",
		"progress:update",
		"plan:generate",
		"plan:complete",
		"plan:view",
		"note:view",
		"note:upload",
		"note:like",
		"note:delete_own",
		"forum:view",
		"forum:ask",
		"forum:answer",
		"forum:vote",
		"user:change_password",
		"profile:update",
		"ai:study_plan",
	},
	"teacher": {
		"quiz:view",
		"quiz:create",
		"quiz:delete_own",
		"quiz:submit",
		"progress:view",
		"progress:update",
		"plan:generate",
		"plan:complete",
		"plan:view",
		"note:view",
		"note:upload",
		"note:like",
		"note:delete_own",
		"note:delete_any",
		"forum:view",
		"forum:ask",
		"forum:answer",
		"forum:vote",
		"user:change_password",
		"profile:update",
		"users:list",
		"ai:study_plan",
	},
	"admin": {
		"*", // everything
	},
}
