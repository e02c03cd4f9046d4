// Package workers determines worker pool sizes that respect container CPU
// limits. GOMAXPROCS tracks cgroup limits since Go 1.19, unlike
// runtime.NumCPU which reports the host count.
package workers
