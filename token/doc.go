// Package token manages artifact access-token issuance and verification using
// configured signing keys and strict validation semantics, so redacted outputs
// can be fetched without re-authenticating against the session store.
package token
