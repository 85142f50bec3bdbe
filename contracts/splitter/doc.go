/*
Package splitter implements Splitter contract, a custodial GAS ledger.

Every GAS payment to the contract must carry a pair of recipient script hashes
as data. The contract keeps the fixed fee (set on deploy and never changed) for
the owner and credits each recipient with a half of the rest. When the rest is
odd, the remaining unit is kept by the contract and credited to no one. A
payment not exceeding the fee is rejected together with the GAS transfer.

Any credited account can withdraw its balance (or a part of it) back in GAS
at any moment with Withdraw method signed by this account.

Payments of other NEP-17 tokens are accepted but not accounted.

# Contract notifications

Split notification. This notification is produced when a GAS payment is
accepted and split.

	Split:
	  - name: from
	    type: Hash160
	  - name: recipient1
	    type: Hash160
	  - name: recipient2
	    type: Hash160
	  - name: share
	    type: Integer
	  - name: fee
	    type: Integer

Withdraw notification. This notification is produced when GAS is transferred
back to the balance holder.

	Withdraw:
	  - name: user
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package splitter

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'o' -> interop.Hash160
    owner receiving fees
  - 'f' -> int
    fixed fee
  - 'a' + interop.Hash160 -> int
    balance of the account, only non-zero balances are stored
*/
