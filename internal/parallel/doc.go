// Package parallel runs independent simulations concurrently.
//
// It provides:
//   - WorkerPool: bounded concurrency pool for jobs returning a value
//   - Bench: solves many seeded mazes at once and summarizes the results
//
// Each simulation stays single-threaded; only whole simulations run in
// parallel, so results never depend on the number of workers.
package parallel
