// ABOUTME: Demo-scope predicate for sandbox contacts
// ABOUTME: Demo contacts never get auto follow-ups or reward side effects
package engine

import (
	"strings"

	"github.com/harperreed/touchbase/models"
)

// DemoEmailSuffix is the marker convention shared with the seeding
// tooling: any contact whose email carries this suffix is sandbox data.
const DemoEmailSuffix = "@demo.touchbase.app"

// IsDemoEmail reports whether an email address carries the demo marker.
func IsDemoEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), DemoEmailSuffix)
}

// IsDemoContact reports whether a contact is sandbox data, either by the
// persisted server-computed flag or by the email marker convention.
func IsDemoContact(contact *models.Contact) bool {
	if contact == nil {
		return false
	}
	return contact.IsDemo || IsDemoEmail(contact.Email)
}
