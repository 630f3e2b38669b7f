// Package session coordinates concurrent access to pipeline sessions.
// It serializes all reads and writes per session ID, in process via
// ref-counted mutexes and optionally across replicas via a distributed
// locker.
package session
