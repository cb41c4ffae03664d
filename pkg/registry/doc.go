// Package registry implements ClientRegistry: client-to-session
// binding, per-session client caps enforced on register, access-level
// checks, and idle detection feeding eviction.
package registry
