package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DebugOptions configures what the DebugManager records during an
// optimization run.
type DebugOptions struct {
	Enabled      bool
	OutputDir    string
	SaveToFile   bool
	LogPrompts   bool
	LogResponses bool
}

// DebugManager captures per-round artifacts of an optimization run: prompts
// sent to the oracle, raw responses, and JSON snapshots of each round.
type DebugManager struct {
	options   DebugOptions
	logger    Logger
	outputDir string
}

// NewDebugManager creates a debug manager. When SaveToFile is enabled the
// output directory is created eagerly so later writes only fail on real I/O
// problems.
func NewDebugManager(logger Logger, options DebugOptions) *DebugManager {
	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(".", "debug_output")
	}

	if options.SaveToFile && options.Enabled {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			logger.Warn("failed to create debug output directory", "dir", outputDir, "error", err)
		}
	}

	return &DebugManager{
		options:   options,
		logger:    logger,
		outputDir: outputDir,
	}
}

// IsEnabled returns whether debugging is enabled.
func (dm *DebugManager) IsEnabled() bool {
	return dm.options.Enabled
}

// SaveRound writes a JSON snapshot of one optimization round.
func (dm *DebugManager) SaveRound(round int, data any) {
	if !dm.options.Enabled || !dm.options.SaveToFile {
		return
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		dm.logger.Error("failed to marshal round snapshot", "round", round, "error", err)
		return
	}

	filename := fmt.Sprintf("round_%d_%s.json", round, time.Now().Format("20060102_150405"))
	dm.saveToFile(filename, string(payload))
}

// LogPrompt records an instruction payload sent to the oracle.
func (dm *DebugManager) LogPrompt(name, prompt string) {
	if !dm.options.Enabled || !dm.options.LogPrompts {
		return
	}

	dm.logger.Debug("oracle prompt", "name", name, "prompt", prompt)
	if dm.options.SaveToFile {
		filename := fmt.Sprintf("prompt_%s_%s.txt", name, time.Now().Format("20060102_150405"))
		dm.saveToFile(filename, prompt)
	}
}

// LogResponse records a raw oracle response.
func (dm *DebugManager) LogResponse(name, response string) {
	if !dm.options.Enabled || !dm.options.LogResponses {
		return
	}

	dm.logger.Debug("oracle response", "name", name, "response", response)
	if dm.options.SaveToFile {
		filename := fmt.Sprintf("response_%s_%s.txt", name, time.Now().Format("20060102_150405"))
		dm.saveToFile(filename, response)
	}
}

func (dm *DebugManager) saveToFile(filename, content string) {
	path := filepath.Join(dm.outputDir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		dm.logger.Error("failed to open debug output file", "file", path, "error", err)
		return
	}
	defer file.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if _, err := fmt.Fprintf(file, "[%s] %s\n", timestamp, content); err != nil {
		dm.logger.Error("failed to write debug output", "file", path, "error", err)
	}
}
