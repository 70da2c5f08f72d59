// Package revgraph reconstructs the two historical curves of an investment
// account: the cumulative committed capital (expense) and the absolute
// current value (revenue).
//
// The inputs are a snapshot of what external collaborators know about the
// account:
//   - Cash flows: dated deposits, withdrawals, buys and sells, aggregated per
//     day into a step function of committed capital.
//   - Performance: the account's percentage-return series, sampled daily,
//     converted into absolute terms against that step function.
//   - Corrections: manual adjustments, and trades held outside of the
//     account that are revalued daily against their market price history,
//     possibly in a foreign currency.
//
// The Engine builds everything once and answers window queries: each query
// recomputes the corrections from the immutable snapshot, so repeating a
// query never drifts. A Session serializes window changes coming from a
// presentation layer and discards results superseded by a newer window.
package revgraph
