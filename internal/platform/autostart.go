package platform

import "strings"

// Autostart launch flags. A login launch must come up idle in the tray:
// raising the shield before anyone is at the keyboard would suppress the
// very input needed to dismiss it.
var autostartArgs = []string{"--no-protect"}

// Service registers or removes the launch-at-login entry for the app.
type Service interface {
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// sanitizedName normalizes an app name for use in file and label names.
func sanitizedName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "pawlock"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}
