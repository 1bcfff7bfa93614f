// Package naming provides consistent naming functions for the objects and
// graph nodes tcstack manages.
//
// A TeamCity instance name is reused verbatim as its namespace, release,
// PostgreSQL role and database name. Derived names (claims, password keys,
// node IDs) follow the {instance}-{purpose} and {kind}/{scope}/{name}
// patterns so that two instances never collide.
package naming
