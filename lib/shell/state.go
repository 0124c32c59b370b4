// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package shell

// State is the startup state machine's position. Transitions only move
// forward: Idle → StaticServerStarting (production only) →
// BackendStarting → AwaitingReady → Ready, with Failed reachable from
// any non-terminal state.
type State int

const (
	StateIdle State = iota
	StateStaticServerStarting
	StateBackendStarting
	StateAwaitingReady
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaticServerStarting:
		return "static-server-starting"
	case StateBackendStarting:
		return "backend-starting"
	case StateAwaitingReady:
		return "awaiting-ready"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
