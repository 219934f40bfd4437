package utils

import (
	"fmt"
	"net/url"
)

// AvatarURL returns a generated placeholder avatar for roster-registered
// staff who have no identity-provider picture.
func AvatarURL(name string) string {
	return fmt.Sprintf(
		"https://ui-avatars.com/api/?name=%s&background=1e293b&color=cbd5e1",
		url.QueryEscape(name),
	)
}
