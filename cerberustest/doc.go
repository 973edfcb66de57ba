/*
Package cerberustest provides mocks and helpers for testing code built on
top of cerberus. Nothing in this package is meant for production use.
*/
package cerberustest
