package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planrun/planrun/internal/config"
)

// ShellAuthenticator acquires credentials by running a configured shell
// command. The command is expected to authenticate every service group in
// one pass and print a JSON object with a "credential_valid" field on
// stdout; anything else is treated as a failed flow.
type ShellAuthenticator struct {
	command string
	timeout time.Duration
	log     *log.Logger
}

// loginOutput is the JSON the login command must print on stdout.
type loginOutput struct {
	CredentialValid bool `json:"credential_valid"`
}

// NewShellAuthenticator builds an authenticator from config. Returns nil if
// no command is configured; the engine then reports authentication failures
// without attempting recovery.
func NewShellAuthenticator(cfg config.AuthConfig, logger *log.Logger) *ShellAuthenticator {
	if cfg.Command == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ShellAuthenticator{command: cfg.Command, timeout: timeout, log: logger}
}

// Login runs the configured command and reports whether it produced a valid
// credential.
func (a *ShellAuthenticator) Login(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.log.Info("running login command", "command", a.command)

	cmd := exec.CommandContext(ctx, "sh", "-c", a.command)
	// New process group so a timeout tears down the whole command tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, stderr, err := runCommand(cmd)
	if err != nil {
		if len(stderr) > 0 {
			return false, fmt.Errorf("login command failed: %w (stderr: %s)", err, bytes.TrimSpace(stderr))
		}
		return false, fmt.Errorf("login command failed: %w", err)
	}

	var out loginOutput
	if err := json.Unmarshal(lastJSONLine(stdout), &out); err != nil {
		return false, errors.New("login command did not print a credential_valid indicator")
	}
	return out.CredentialValid, nil
}

// runCommand drains stdout and stderr concurrently before waiting, so output
// larger than the pipe buffer cannot deadlock the command.
func runCommand(cmd *exec.Cmd) (stdout, stderr []byte, err error) {
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting command: %w", err)
	}

	var wg sync.WaitGroup
	var stdoutBuf, stderrBuf bytes.Buffer
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(&stdoutBuf, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		io.Copy(&stderrBuf, stderrPipe)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), waitErr
}

// lastJSONLine returns the last non-empty line of output. Login commands
// often chat on stdout before printing their final JSON status line.
func lastJSONLine(output []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	if len(lines) == 0 {
		return nil
	}
	return bytes.TrimSpace(lines[len(lines)-1])
}
