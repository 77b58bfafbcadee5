// Package location holds the client and location hierarchy. Every
// device belongs to a location, and every location belongs to a
// client, which is how the dashboard scopes fleet views.
package location
