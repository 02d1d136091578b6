// Package ams models the printer's Automated Material System and implements
// the filament matcher that assigns model filament requirements to loaded
// slots.
//
// The matcher is pure and stateless: it never mutates its inputs, never
// performs I/O, and is safe to call from concurrent orchestration runs. Slot
// snapshots are supplied by the printer transport and must be fetched fresh
// for every matching call; loaded filament can change between query and print,
// so this package never caches them.
package ams
