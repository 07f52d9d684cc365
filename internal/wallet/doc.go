// Package wallet is the client side of a local signer bridge: a separate
// process that holds keys, shows approval prompts and broadcasts signed
// transactions.
//
// Endpoints (JSON over HTTP):
//
//   - GET  /v1/session        200 {"address"} or 401 when nothing is connected
//   - POST /v1/connect        200 {"address"}, 403 when the user declines
//   - POST /v1/disconnect     ends the bridge session
//   - POST /v1/contract-call  200 {"txid"}, 409 or {"error":"cancelled"} when
//     the user cancels signing, any other status >= 400 when the broadcast
//     is refused
//
// Session wraps the bridge as the sign-in gate the claim path checks.
package wallet
