// Package ephemeris provides planetary positions for chart computation.
//
// Analytic is a dependency-free provider accurate to a few arc minutes for
// modern dates. It reads the requested instant on the civil clock of the
// caller's timezone at minute resolution and refuses readings that occur
// twice (daylight-saving fall-back) with engine.ErrAmbiguousLocalTime, so the
// engine's UTC retry path is exercised the same way it would be against an
// external ephemeris service. Unknown timezone names are treated as UTC.
//
// Instrumented wraps any provider with Prometheus call metrics.
package ephemeris
