// Package identity derives a default principal name from the invoking
// account when no configuration source supplies one.
package identity

import (
	"os"
	"os/user"
	"runtime"
	"strings"
)

// Rule controls how a raw account name becomes a principal.
type Rule struct {
	// DomainSuffix, when set, is appended to the derived principal
	// (e.g. "@company.com"). A missing leading @ is added.
	DomainSuffix string
}

// CurrentUser returns the operating-system account name, falling back
// through the common environment variables when the user database is
// unreachable (static binaries, minimal containers).
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, envVar := range []string{"USER", "USERNAME", "LOGNAME"} {
		if name := os.Getenv(envVar); name != "" {
			return name
		}
	}
	return "unknown_user"
}

// Derive transforms a raw account name into a principal. The function is
// pure: same input and rule always produce the same output.
//
// Steps: take the part before "@" when the name looks like an email,
// replace internal whitespace with dots, lower-case, then append the
// rule's domain suffix if one is configured.
func Derive(raw string, rule Rule) string {
	name := raw
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	name = strings.Join(strings.Fields(name), ".")
	name = strings.ToLower(name)

	if rule.DomainSuffix != "" {
		suffix := rule.DomainSuffix
		if !strings.HasPrefix(suffix, "@") {
			suffix = "@" + suffix
		}
		name += suffix
	}
	return name
}

// DefaultPrincipal derives the default principal for the current
// account. This is the only identity operation that touches the OS.
func DefaultPrincipal(rule Rule) string {
	return Derive(CurrentUser(), rule)
}

// SystemInfo is a diagnostic snapshot used by the doctor command.
type SystemInfo struct {
	Username string
	Hostname string
	OS       string
	Arch     string
}

// CurrentSystem collects the diagnostic snapshot.
func CurrentSystem() SystemInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown_host"
	}
	return SystemInfo{
		Username: CurrentUser(),
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}
