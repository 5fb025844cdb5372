package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/atomikpanda/provision/internal/ageutil"
	"github.com/atomikpanda/provision/internal/step"
)

// DecryptAction decrypts an age-encrypted secret into place.
type DecryptAction struct {
	Source      string // absolute path of the .age file
	Destination string
	Mode        os.FileMode
	Key         *ageutil.Key // nil when no key is configured
}

func (a *DecryptAction) Describe() string {
	return fmt.Sprintf("decrypt %s -> %s (%04o)", a.Source, a.Destination, a.Mode)
}

func (a *DecryptAction) Perform(ctx context.Context) step.Outcome {
	if a.Key == nil {
		return step.Failed(fmt.Sprintf("%v; set age.identity or age.passphrase in the plan, or %s / %s",
			ageutil.ErrNoKey, ageutil.EnvIdentity, ageutil.EnvPassphrase))
	}
	return step.FromError(a.Key.DecryptFile(a.Source, a.Destination, a.Mode))
}
