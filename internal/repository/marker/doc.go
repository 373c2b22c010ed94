// Package marker keeps two runs of the same tool from writing the same
// outputs at once. A run holds a lock file containing its PID; a file left
// behind by a process that no longer exists is treated as stale.
package marker
