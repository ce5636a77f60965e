// Package jawbone implements external login via the Jawbone UP OAuth2 API.
package jawbone
