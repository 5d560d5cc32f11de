// Package domain models foot-traffic sensor data and the transformations that
// turn an hourly feed into daily aggregates.
//
// # Data Source
//
// Each venue's sensor exports a semicolon-delimited text feed, one row per hour,
// with a header line first:
//
//	Timestamp;In;Out;Men in;Men out;Women in;Women out;Group in;Group out;Passersby
//	1/6/2024 9:00;10;2;6;1;4;1;3;0;50
//
// Timestamps are d/M/yyyy H:mm in the venue's local time (day and month may or
// may not carry a leading zero). Rows with fewer than ten fields are sensor
// glitches and are skipped. A row with enough fields but a non-integer or
// negative count, a bad timestamp, or a timestamp not after the previous row
// aborts the parse with a [FeedParseError].
//
// # Hourly Records
//
// Capture rate is entering visitors as a percentage of passersby. Each record
// also carries running entering/leaving totals since local midnight (all
// hours, not only business hours) and an estimate of people currently inside:
//
//	live = max(0, accumulated_in - accumulated_out)
//
// # Daily Records
//
// Counts are summed over the weekday's business hours only ([BusinessHours],
// half-open [start, end) windows indexed by time.Weekday). Derived metrics:
//
//	capture rate  = round2(in / passersby * 100)           0 if passersby == 0
//	conversion    = round2(group_in / in * 100)            0 if in == 0
//	dwell time    = round0(live_end_of_day / in * 10)      0 if in == 0
//	data accuracy = round1(min(in/out, out/in) * 100)      0 if in == 0 or out == 0
//
// Dwell time is an occupancy ratio, not a duration. live_end_of_day is the live
// estimate of the last hour recorded for that date. Rounding is half away from
// zero.
//
// # Weather
//
// Daily weather from the provider is joined by position: the provider is asked
// for exactly [first day, last day] and must return one observation per day.
// WMO weather codes map to glyphs via [WeatherSymbol].
package domain
