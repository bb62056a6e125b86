// Package fakeplugin is an in-memory stand-in for the salon booking
// plugin's REST API. It serves the same routes and JSON shapes under the
// same path prefix, issues HS256 bearer tokens and enforces the staff
// permission flags. The CLI uses it for --demo runs and tests use it as an
// end-to-end backend.
package fakeplugin
