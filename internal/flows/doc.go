// Package flows holds the token lifecycle state machines — issuance,
// liveness checking, rotation, logout — as dependency-injected functions
// with no root package imports. The root engine builds one Deps value and
// delegates; tests drive each flow with hand-built dependencies.
package flows
