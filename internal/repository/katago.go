package repository

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"gofish/internal/bootstrap"
	errs "gofish/internal/errors"
)

const maxResponseLine = 1 << 20

// KatagoClient speaks GTP to an engine: numbered commands go to its stdin,
// responses are read line by line from its stdout.
type KatagoClient struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Scanner
	closer io.Closer
	log    *zap.SugaredLogger

	mu             sync.Mutex
	lastSentID     int
	lastReceivedID int
}

// NewKatagoClient starts the engine binary from cfg in GTP mode.
func NewKatagoClient(cfg *bootstrap.Config, log *zap.SugaredLogger) (*KatagoClient, error) {
	args := []string{"gtp"}
	if cfg.KatagoModel != "" {
		args = append(args, "-model", cfg.KatagoModel)
	}
	if cfg.KatagoConfig != "" {
		args = append(args, "-config", cfg.KatagoConfig)
	}
	cmd := exec.Command(cfg.KatagoPath, args...)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cfg.KatagoPath, err)
	}
	log.Infof("started engine %s (pid %d)", cfg.KatagoPath, cmd.Process.Pid)

	go relayStderr(stderrPipe, log)

	client := NewGTPClient(stdoutPipe, stdinPipe, log)
	client.cmd = cmd
	client.closer = stdinPipe
	return client, nil
}

// NewGTPClient talks GTP over an already connected reader and writer.
func NewGTPClient(r io.Reader, w io.Writer, log *zap.SugaredLogger) *KatagoClient {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseLine)

	return &KatagoClient{
		stdin:  bufio.NewWriter(w),
		stdout: scanner,
		log:    log,
	}
}

func relayStderr(r io.Reader, log *zap.SugaredLogger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		log.Debugw("engine stderr", "line", scanner.Text())
	}
}

// Send writes one command and returns the ID it was numbered with.
func (c *KatagoClient) Send(msg string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.lastSentID + 1
	line := strconv.Itoa(id) + " " + strings.TrimSpace(msg) + "\n"

	if _, err := c.stdin.WriteString(line); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrEngineClosed, err)
	}
	if err := c.stdin.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrEngineClosed, err)
	}
	c.log.Debugw("sent to engine", "line", strings.TrimSpace(line))

	c.lastSentID = id
	return id, nil
}

// Receive reads one line of output. Lines that do not start a response
// belong to the last response seen, so they carry its ID.
func (c *KatagoClient) Receive() (int, string, error) {
	if !c.stdout.Scan() {
		if err := c.stdout.Err(); err != nil {
			return 0, "", fmt.Errorf("%w: %v", errs.ErrEngineClosed, err)
		}
		return 0, "", errs.ErrEngineClosed
	}
	line := strings.TrimRight(c.stdout.Text(), "\r\n")

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := responseID(line); ok {
		c.lastReceivedID = id
	}
	return c.lastReceivedID, line, nil
}

// responseID reads the ID from "=<id> ..." and "?<id> ..." lines.
func responseID(line string) (int, bool) {
	if line == "" || (line[0] != '=' && line[0] != '?') {
		return 0, false
	}
	rest := line[1:]
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Close asks the engine to quit and waits for the process to exit.
func (c *KatagoClient) Close() error {
	if _, err := c.Send("quit"); err != nil {
		c.log.Warnw("failed to send quit to engine", "error", err)
	}
	if c.closer != nil {
		c.closer.Close()
	}
	if c.cmd != nil {
		return c.cmd.Wait()
	}
	return nil
}
