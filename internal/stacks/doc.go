// Package stacks provides an HTTP client for a Stacks node's read API.
//
// # Overview
//
// The client evaluates read-only contract functions against the node's
// current confirmed state. It never signs or broadcasts anything: writes go
// through the wallet bridge (package wallet).
//
// # Client Usage
//
//	client, err := stacks.NewClient("https://api.mainnet.hiro.so")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	value, err := client.CallReadOnly(ctx, stacks.ReadOnlyCall{
//		Contract: contract, // clarity.Principal with a contract name
//		Function: "get-king-info",
//	})
//
// # API Endpoints
//
//   - POST /v2/contracts/call-read/{address}/{contract}/{function}
//     body {"sender": "...", "arguments": ["0x..."]}, answer
//     {"okay": true, "result": "0x..."} or {"okay": false, "cause": "..."}
//
// When no sender is given the contract's own address is used.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept: application/json and User-Agent: crown/0.1
//   - Have a 10-second timeout from the underlying http.Client
//   - Are traced with an OpenTelemetry span (no-op unless tracing is set up)
//
// # Error Handling
//
// Transport failures, HTTP status >= 400, undecodable JSON, okay=false and
// malformed Clarity hex are all returned as wrapped errors. The client never
// retries; callers decide whether the next poll is the retry.
package stacks
