// Package config loads crown's settings.
//
// Resolution order, later steps winning:
//
//  1. Built-in defaults (mainnet Hiro API, the centrifuge-king contract,
//     a signer bridge on 127.0.0.1:7777, deny post-conditions)
//  2. ~/.config/crown/config.toml, or the path given with -config; a
//     missing file is not an error
//  3. CROWN_* environment variables
//
// Blank values fall back to defaults, "~" is expanded in paths, and the
// result is validated: the contract address must be a c32check principal
// matching the network, network is mainnet or testnet, and
// post_conditions is deny or allow.
//
// Example file:
//
//	api_url          = "https://api.testnet.hiro.so"
//	contract_address = "ST000000000000000000002AMW42H"
//	contract_name    = "king-of-the-hill"
//	network          = "testnet"
//	post_conditions  = "deny"
//	otel_endpoint    = "localhost:4318"
package config
