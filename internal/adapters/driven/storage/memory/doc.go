// Package memory provides in-memory implementations of the driven storage
// ports. They back unit tests and the throwaway profile; nothing here
// survives a process restart.
package memory
