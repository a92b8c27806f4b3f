package commands

import (
	"github.com/systmms/cloudconduit/pkg/conduit"
)

// parseProfileArg validates a profile positional argument.
func parseProfileArg(arg string) (conduit.ServiceProfile, error) {
	return conduit.ParseProfile(arg)
}
