/*
Package cash defines a simple implementation of moving value between
principals and vaults.

There is no logic in the balances, except that a balance may never go
below zero or overflow. Thus, this implementation is referred to as cash.
Simple and safe.

The Bank holds the balances of everyone in its own store. Vaults deposit
into and pay out of it, and every move is applied atomically.
*/
package cash
