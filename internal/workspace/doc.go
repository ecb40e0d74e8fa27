// Package workspace manages the directories pipeline runs own and write
// into: the publish staging and dist trees, and the daemon's data directory.
//
// A Manager wraps one directory. Reset gives a run a clean tree, Ensure
// creates the directory while keeping existing contents (daemon state), and
// Cleanup removes it entirely.
package workspace
