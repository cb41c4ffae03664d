// Package validator implements SessionValidator: six passes (structure,
// data integrity, dependencies, consistency, performance, deep) that
// produce ValidationIssue records, a 0-100 health score, a healthy/
// warning/critical/corrupted status bucket, and an idempotent
// auto-repair pass driven by each issue's RepairAction.
package validator
