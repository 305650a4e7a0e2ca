package common

import (
	"context"
	"path/filepath"

	"resumeforge/internal/errors"
)

// DocumentOperationFunc turns the bytes of one input file into a result.
type DocumentOperationFunc[Output any] func(ctx context.Context, data []byte, filename string) (Output, error)

// RunDocumentCommand reads a document, runs operation on it and writes the
// formatted result, the shared flow of file-based CLI commands.
func RunDocumentCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	filename string,
	maxSize int64,
	operation DocumentOperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	data, err := fileProcessor.ReadDocument(filename, maxSize)
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Processing document",
			"file", filepath.Base(filename),
			"bytes", len(data),
			"output_format", cmdConfig.OutputFormat,
			"output_file", cmdConfig.OutputFile)
	}

	result, err := operation(ctx, data, filename)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
