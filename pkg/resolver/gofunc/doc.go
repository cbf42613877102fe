// Package gofunc resolves Go functions and methods of a running Go program
// from its runtime function table (.gopclntab).
//
// Queries take one of two forms:
//
//	functions:<package>!<function>
//	methods:<package>!<type>.<method>
//
// Each part is a glob. The type of a method is matched without pointer
// decoration, so "methods:net/http!Client.Do" finds net/http.(*Client).Do.
// Closures (pkg.fn.func1 and friends) are never reported as methods.
//
// The function table survives -ldflags=-s -w, so stripped binaries resolve
// as well as debug builds.
package gofunc
