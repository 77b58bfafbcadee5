// Package alert records fleet events raised against devices, such as
// failed schedule syncs and offline transitions, for surfacing in the
// dashboard and acknowledging by operators.
package alert
