/*
Package cerberus defines the common interfaces that tie together the
custody engine and its subpackages, as well as implementations of some
of the simpler components (when interfaces would be too much overhead).

A vault is a quorum governed account. Every mutating request is a Msg,
wrapped in a Tx that carries enough information to authenticate the
caller, and routed to a Handler. Handlers operate on a KVStore that is
cache-wrapped for the duration of a single request, so that a request
either commits all of its writes and events or none of them.

We pass context through context.Context between the vault, decorators
and handlers. There should exist two functions for every XYZ of type T
that we want to support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)
*/
package cerberus
