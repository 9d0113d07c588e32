package service

import "errors"

// Errors shared across every engine, matching spec.md §7's error taxonomy.
var (
	// ErrNotRestarted is returned by Start when called on a Stopped engine
	// without an intervening Restart (spec.md §4.10 "Restart ordering
	// violation").
	ErrNotRestarted = errors.New("nilservice: start called after stop; call Restart first")

	// ErrAlreadyRunning is returned by Start on an engine already Running.
	ErrAlreadyRunning = errors.New("nilservice: already running")

	// ErrAmbiguousHandler names the ambiguous-signature error of spec.md
	// §4.2. It is kept for parity only: the explicit-adaptor design in
	// SPEC_FULL.md §4.2 makes ambiguity unrepresentable, and no function
	// in this module returns it.
	ErrAmbiguousHandler = errors.New("nilservice: ambiguous handler signature")

	// ErrRouteTaken is returned by WebService.UseWS when the route already
	// has a GET handler (spec.md §3 "a route resolves to at most one of
	// {websocket, GET handler}"). OnGet returns no error and does not
	// check; a route registered both ways is served as the websocket route.
	ErrRouteTaken = errors.New("nilservice: route already bound to a different handler kind")
)
