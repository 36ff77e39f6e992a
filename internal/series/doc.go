// Package series extracts scalar metric series from event logs and reduces
// them for plotting.
//
// A run directory holds one TensorBoard event log. Loader.Load decodes the
// log, keeps the records of one tag, averages records that share a step and
// returns a Series ordered by strictly increasing step.
//
// Smooth applies a centered rolling mean with truncated edges. Aggregate
// aligns several runs onto the first run's steps by linear interpolation and
// reports the pointwise mean and population standard deviation.
//
// Expected failures (no log, missing tag, unreadable log, nothing to
// aggregate) are reported as *NotFoundError, which matches ErrNotFound with
// errors.Is. Batch callers skip those runs and keep going.
package series
