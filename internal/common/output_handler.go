package common

import (
	"fmt"
	"io"
	"os"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	stdout        io.Writer
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler writing to stdout when no
// output file is configured
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		stdout:        os.Stdout,
		logger:        logger,
	}
}

// WithStdout redirects stdout output to w
func (oh *OutputHandler) WithStdout(w io.Writer) *OutputHandler {
	oh.stdout = w
	return oh
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}
	return oh.write([]byte(output), config)
}

// WriteDocument writes already rendered bytes without formatting
func (oh *OutputHandler) WriteDocument(content []byte, config CommandConfig) error {
	return oh.write(content, config)
}

func (oh *OutputHandler) write(content []byte, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	if config.OutputFile == "" {
		if _, err := oh.stdout.Write(content); err != nil {
			return errors.NewIOError("FILE_WRITE_FAILED", "Cannot write to stdout", err)
		}
		return nil
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, content); err != nil {
		return err
	}

	if oh.logger != nil {
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile,
			"format", config.OutputFormat,
			"bytes", len(content))
	}
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
