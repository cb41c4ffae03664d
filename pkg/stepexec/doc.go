// Package stepexec defines StepExecutor, the pluggable capability that
// performs the work described by a Step, plus Reference, a trivial
// in-memory implementation used by tests.
package stepexec
