/*
Package host runs the splitter ledger outside of the blockchain.

Processor plays the role of the execution environment: it authenticates
nothing itself and trusts MessageInfo, but it loads the ledger state from the
key-value store, hands it to the ledger engines and commits the result only if
the whole call succeeds. Outgoing payments are returned as Transfers in the
Response and must be executed by the caller together with the commit.

Messages are JSON objects with a single field naming the operation:

	{"send_duo":{"receiver1":"N...","receiver2":"N..."}}
	{"withdraw":{"amount":"500"}}
	{"get_balance":{"address":"N..."}}

Amounts are decimal strings. Addresses are Neo addresses.

Storage layout:
  - 0x01 -> owner address
  - 0x02 -> fixed fee, 32-byte big-endian
  - 0x03 + address -> balance, 32-byte big-endian
*/
package host
