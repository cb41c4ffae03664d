// Package restoration implements RestorationPlanner: scores each
// candidate session by recent activity, pre-check health, complexity,
// dependency depth and user priority, partitions them into high/medium/
// low stages, and executes stages sequentially with bounded
// concurrency within each stage, aborting if failures run away.
package restoration
