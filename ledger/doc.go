/*
Package ledger implements the host-independent core of the splitter ledger.

The ledger keeps an owner, a fixed fee and a mapping from account identity to
a credited balance. Deposit splits every funded call into the owner's fee and
two equal shares for the named recipients; Withdraw debits the caller's own
balance and returns a transfer instruction the host must execute together
with persisting the new state.

Engines never mutate the State they are given. They return a replacement
State on success and the untouched input on failure, so a host committing
only successful results gets all-or-nothing semantics for free.

# Balances

Balances are unsigned 256-bit integers. Any credit that would overflow fails
with ErrOverflow instead of wrapping around. A debited-to-zero entry stays in
the mapping, BalanceOf reports zero both for such entries and for identities
that were never credited.

# Odd remainders

When funds minus fee is odd, the last unit cannot be split evenly and is not
credited to anyone. Split.Burned reports it.
*/
package ledger
