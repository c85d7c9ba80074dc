// Package broadcast periodically makes emitters say a voiceline.
//
// Every emitter owns a Record with a randomized next-fire time. The Scheduler
// keeps one cached wake time for all records, so most ticks return without
// looking at any record. When the wake time passes, the Scheduler scans every
// record, fires the overdue ones and re-arms them with a freshly jittered
// interval. Re-arming always draws a new random interval, which keeps
// emitters that were created or recovered at the same instant from ever
// firing in lockstep.
//
// Before an emitter fires, hooks registered on the Scheduler receive an
// *AttemptBroadcast at HookPosBeforeBroadcast and may cancel it. A cancelled
// emitter is still re-armed.
package broadcast
