package orchestrator

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// CommandRunner launches the probing tool and captures its output
// streams. Implementations must honor ctx cancellation by killing the
// process.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands through the operating system.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var outBuf, errBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	start := time.Now()
	err := cmd.Run()

	log.WithFields(log.Fields{
		"command":  name,
		"args":     args,
		"duration": time.Since(start).String(),
	}).Debug("scanner process finished")

	return outBuf.Bytes(), errBuf.Bytes(), err
}
