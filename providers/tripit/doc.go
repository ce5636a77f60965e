// Package tripit implements external login via TripIt's API.
//
// TripIt's profile payload is irregular: the user id lives under the
// "@attributes" pseudo-field and email addresses appear as either a single
// object or an array depending on how many the traveler registered. The claim
// mapper handles both shapes and treats a missing email as absent rather than
// as an error.
package tripit
