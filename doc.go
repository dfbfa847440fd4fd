// Package papertrade simulates equity investing without a brokerage: named
// portfolios accumulate lots of shares bought at historical prices, and can
// be queried for cost basis or market value as of any date.
//
// The core functionalities include:
//   - Portfolio Registry: a root aggregate mapping unique portfolio IDs to
//     portfolios, each an ordered sequence of immutable purchase lots plus a
//     set of tracked tickers.
//   - Valuation: as-of-date cost basis and market value, with explicit
//     strict and forward-fill policies for days without price data.
//   - Investment Strategies: lump-sum investing with equal or percentage
//     weights, and a tolerant dollar-cost-averaging scheduler that shifts
//     purchases forward over missing trading days.
//   - Price Sources: a PriceSource capability resolves a ticker to its daily
//     price series; implementations fetch remotely and cache to disk.
//   - Data Persistence: portfolios and strategy descriptors round-trip
//     through flat CSV files, and a JSONL journal of operations rebuilds
//     registry state between runs.
//
// This package serves as the foundational logic for the `ptc` command-line
// tool. Replayed purchases always go through the same purchase algorithm, so
// every derived number is consistent with the price series it came from.
package papertrade
