// Package pta validates PTA access tokens.
//
// A token is the hex encoding of an AES-128-CBC ciphertext. Its plaintext
// carries a CRC-32 checksum, a Unix deadline and the URL pattern the token
// grants access to. A request is authorized when some configured key pair
// decrypts a candidate token into a payload whose checksum verifies, whose
// deadline has not passed and whose pattern matches the request path.
//
// The package performs no I/O. Transport concerns live in the gate.
package pta
