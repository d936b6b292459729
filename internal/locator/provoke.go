package locator

import (
	"context"
	"fmt"
	"os/exec"

	"gpgbridge/util"
)

// Command runs an external program whose only job is to bring the agent
// up, e.g. "gpg-connect-agent /bye". Its output is discarded.
type Command struct {
	Program string
	Args    []string
	Logger  *util.Logger
}

// Provoke runs the command to completion and reports a non-zero exit.
func (c *Command) Provoke(ctx context.Context) error {
	if c.Program == "" {
		return fmt.Errorf("no connect command configured")
	}
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	// nil Stdin/Stdout/Stderr go to the null device; stdout here carries
	// agent frames and must stay clean.

	c.Logger.Debug("exec: %s", cmd.String())

	err := cmd.Run()
	if cmd.ProcessState != nil {
		c.Logger.Info("agent launch status: %s", cmd.ProcessState)
	}
	if err != nil {
		return fmt.Errorf("exec %q: %w", c.Program, err)
	}
	return nil
}
