// Package health scores a host metrics snapshot.
//
// score.go provides the pure Evaluate(Snapshot, time.Time) function. The score
// starts at 100 and loses a fixed number of points per penalty rule:
// load_1m > 2.0 (-20), mem > 90% (-20), disk > 85% (-35).
//
// Status is decided by a second, independent threshold table:
// critical when disk > 92%, mem > 95%, load_1m > 4.0 or score <= 50;
// warning when disk > 85%, mem > 90%, load_1m > 2.0 or score <= 80;
// ok otherwise. The two tables overlap but are checked separately, so a single
// moderate penalty can still read "critical".
package health
