// Package security provides the security primitives of the login handshake:
// the tamper-evident state codec, anti-CSRF correlation tokens, audit logging
// with PII protection, and per-IP rate limiting.
package security
