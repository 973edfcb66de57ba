/*
Package x contains the extensions a vault is built from.

Extensions implement common functionality (Handler, Decorator,
Authenticator) and are combined together by the vault package.
This package itself only defines how the caller of a request is
authenticated. Sub-packages provide signature verification (sigs),
the value ledger (cash) and the vault engine (vault).

Note that protobuf types in exported code will be prefixed by
the package, so follow standard go naming conventions and avoid
stutter. Use eg. `vault.ConfirmMsg` in place of `vault.VaultConfirmMsg`.
*/
package x
