// Package server implements the HTTP boundary of the shop API.
//
// The implementation is organized into specialized files for configuration,
// routing, request parsing, shop and chat handlers, and server lifecycle.
// Domain state lives in the shop and chat packages.
package server
