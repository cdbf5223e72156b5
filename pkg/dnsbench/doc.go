/*
Package dnsbench contains functionality for measuring round-trip latency of plain DNS over UDP resolvers.
Each benchmark is represented by Benchmark struct that is used to set up the benchmark as desired
and then execute it using Benchmark.Run. Run sends the same hand encoded query to every target
a configured number of times over a single UDP socket and returns one TargetResult per target,
in the order the targets were supplied.
*/
package dnsbench
