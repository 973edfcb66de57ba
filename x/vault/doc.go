/*
Package vault implements a multi-owner vault.

A vault is owned by a set of principals. Any owner can submit a
transaction moving value out of the vault, but it is executed only after
at least threshold owners confirmed it. Owners can confirm and revoke
their confirmation until the transaction is executed. The owner set and
the threshold are managed by the owners themselves, one owner at a time.

The state of a vault is kept in its own store and changed only through
requests passed to Vault.Deliver. Every successful request publishes the
events describing what happened, in order, to the configured sink.
*/
package vault
