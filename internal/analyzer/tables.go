package analyzer

import "github.com/thkwag/thymelab-ls/internal/collections"

// Fixed classifier tables for the expression analyzer. These are immutable
// after init; analyzer entry points only ever read them.

// reservedWords are expression-language keywords and operators that must
// never be reported as variable paths, alone or as the head of a chain.
var reservedWords = collections.NewSet(
	"and", "or", "not",
	"gt", "ge", "lt", "le", "eq", "ne",
	"true", "false", "null",
	"instanceof", "new", "return", "this",
	"matches", "contains", "startsWith", "endsWith",
	"size", "length",
)

// securityFunctions are Spring Security expression functions and objects.
// They are recognized so that expressions like hasRole('ADMIN') contribute
// no variable paths.
var securityFunctions = collections.NewSet(
	"hasRole", "hasAnyRole",
	"hasAuthority", "hasAnyAuthority",
	"principal", "authentication",
	"permitAll", "denyAll",
	"isAnonymous", "isAuthenticated", "isFullyAuthenticated",
	"hasIpAddress", "hasAnyPermission",
)

// utilityObjects are the built-in helper namespaces callable inside
// expressions. The namespace token itself is never a variable path; only
// call arguments are analyzed.
var utilityObjects = collections.NewSet(
	"#strings", "#numbers", "#dates", "#calendars", "#temporals",
	"#objects", "#bools", "#arrays", "#lists", "#sets", "#maps",
	"#aggregates", "#messages", "#uris", "#conversions", "#ids",
	"#fields", "#authentication", "#authorization", "#httpServletRequest",
	"#httpSession", "#locale", "#request", "#response", "#session",
	"#servletContext", "#vars", "#ctx", "#root", "#execInfo",
)

// UtilityObjectNames lists the built-in helper namespaces sorted by name,
// for completion after a '#'.
func UtilityObjectNames() []string {
	return collections.SortedMembers(utilityObjects)
}

// aggregateMethods are no-argument collection aggregate calls that are
// dropped when they terminate a selection/filter result, e.g.
// users.?[active].size()
var aggregateMethods = collections.NewSet(
	"size", "isEmpty", "length", "count",
)
