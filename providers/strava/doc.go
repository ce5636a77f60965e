// Package strava implements external login via Strava's OAuth2 API.
//
// Strava issues athlete-scoped access tokens; the profile fetched after the
// exchange is the authenticated athlete document from /api/v3/athlete. Note
// that Strava expects the scope parameter comma separated, not space
// separated.
package strava
