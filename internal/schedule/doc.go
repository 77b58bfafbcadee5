// Package schedule implements the device schedule synchronization
// engine: the locally-edited rule model, the compact device wire
// codec, the correlated command dispatcher, the push-confirmation
// correlator with bounded waiting and manual retry, and reconciliation
// of device-authoritative schedule state.
//
// One engine serves every device family. A Family descriptor carries
// the only variation: whether a control channel exists and how device
// types map to control codes. The Manager owns the active sessions and
// routes broker pushes to them; each Session exclusively owns its
// ScheduleSet and its single pending CorrelationContext.
//
// Local edits are provisional. The device is the source of truth:
// whenever it returns a schedule snapshot, the session's rule list is
// replaced wholesale, never merged.
package schedule
