// Package models defines the domain models for giftpot's shared-expense backend.
//
// # Models
//
//   - Expense: money spent, split among participants and advanced by payers
//   - ParticipantShare: one person's stake in an expense (explicit or equal split)
//   - PayerContribution: money one person actually advanced
//
// People are referenced by opaque person IDs (UUID strings issued by the account
// layer); the models never dereference them.
//
// # Design Principles
//
//  1. **Money is decimal**: amounts use shopspring/decimal, rounded to two
//     places at the display boundary, never binary floating point.
//  2. **Validation lives here, not in the engine**: Expense.Validate reports
//     malformed input at creation time; the balance calculator stays permissive
//     and computes whatever it is given.
//  3. **Gifts are tags**: an expense may carry a GiftID as an organizational
//     label only and never affects balance math.
package models
