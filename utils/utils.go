package utils

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Config struct {
	Project   string
	InputDir  string
	OutputDir string
	Prefix    string
	Threads   int
}

func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	cfg := Config{Prefix: "ped", Threads: 4}

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "Project":
			cfg.Project = value
		case "InputDir":
			cfg.InputDir = value
		case "OutputDir":
			cfg.OutputDir = value
		case "Prefix":
			cfg.Prefix = value
		case "threads":
			t, tErr := strconv.Atoi(value)
			if tErr != nil {
				return cfg, fmt.Errorf("threads value %q is not a number", value)
			}
			cfg.Threads = t
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Runner executes one external tool command line. The pipeline only talks
// to dx, bcftools, tabix and peddy through this interface, so tests can swap
// in a recording double instead of the real binaries.
type Runner interface {
	Run(cmdStr string) error
}

// BashRunner runs command strings through bash -c with stdout/stderr passed
// through.
type BashRunner struct{}

func (BashRunner) Run(cmdStr string) error {
	return RunBashCmdVerbose(cmdStr)
}

func RunBashCmdVerbose(cmdStr string) error {
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return err
	}
	return nil
}

// CheckDeps verifies that the external tools of the pipeline are on $PATH.
func CheckDeps() error {
	tools := []string{"dx", "bcftools", "tabix", "peddy"}
	var missing []string
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NewStageLogger returns a logger writing JSON records to the run log file
// and human-readable lines to stderr.
func NewStageLogger(logFile *os.File) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))
}
