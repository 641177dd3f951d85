// Package webhook processes Cakto purchase notifications.
//
// A notification flows through a linear decision sequence: shared-secret
// check, event filter, field extraction, account find-or-create, and the
// access-instruction email. Each step short-circuits with its own terminal
// response.
package webhook
