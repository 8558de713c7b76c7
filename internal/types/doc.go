/*
Package types defines the data structures shared by mimic's packages.

# Request Types

RequestSpec:
  - Fully decoded request (URL, method, payload, headers, proxy)
  - Built by the cli package from positional inputs
  - Consumed by the executor

Preset:
  - Fixed endpoint used by the connect command
  - Loaded from the YAML configuration

# Result Types

Result:
  - The single JSON record printed per invocation
  - Three shapes selected by Kind: ok, invalid_args, transport
  - Built only through OK, InvalidArgs and TransportFailure

HistoryEntry:
  - One recorded invocation read back from the history database
*/
package types
