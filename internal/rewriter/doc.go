// Package rewriter applies captured attribution parameters to anchor
// elements pointing at eligible form domains.
//
// Each anchor moves through a one-way state machine: unprocessed to
// processed, marked by an attribute on the element itself. The mark
// prevents re-adding parameters a user or another script has since
// removed or edited. The same attribute doubles as an author opt-out:
// pre-setting it on an anchor keeps the rewriter away permanently.
package rewriter
