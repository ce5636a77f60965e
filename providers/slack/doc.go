// Package slack implements external login via Slack's OAuth2 API.
package slack
