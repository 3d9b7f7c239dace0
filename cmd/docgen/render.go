package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/yamlutil"
)

// Sentinel errors for the render command.
var (
	ErrReadData    = errors.New("cannot read data file")
	ErrInvalidData = errors.New("invalid template data")
	ErrWriteOutput = errors.New("cannot write output")
)

type renderFlags struct {
	template string
	version  string
	format   string
	data     string
	output   string
}

// runRender generates one document and writes it to a file or stdout.
func runRender(ctx context.Context, args []string, env *Environment) error {
	fs := newFlagSet("render", env.Stderr)
	var rf renderFlags
	fs.StringVarP(&rf.template, "template", "t", "", "template id")
	fs.StringVarP(&rf.version, "version", "V", "", "template version")
	fs.StringVarP(&rf.format, "format", "f", string(docgen.FormatHTML), "html or pdf")
	fs.StringVarP(&rf.data, "data", "d", "", `JSON or YAML data file, "-" for stdin`)
	fs.StringVarP(&rf.output, "output", "o", "", `output path, "-" for stdout`)

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if rf.template == "" || rf.data == "" {
		return fmt.Errorf("%w: --template and --data are required", ErrUsage)
	}
	format, err := docgen.ParseFormat(rf.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(fs, env)
	if err != nil {
		return err
	}
	logger, err := env.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := readData(rf.data, env.Stdin)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	var pdf docgen.PDFConverter
	if format == docgen.FormatPDF {
		engine := env.NewEngine(cfg, logger)
		if err := engine.Initialize(ctx); err != nil {
			return err
		}
		defer func() {
			if err := engine.Shutdown(); err != nil {
				logger.Warn("PDF engine shutdown failed", zap.Error(err))
			}
		}()
		pdf = engine
	}

	doc, err := a.generator(pdf).GenerateStream(ctx, docgen.Request{
		TemplateID: rf.template,
		Version:    rf.version,
		Format:     format,
		Data:       data,
	})
	if err != nil {
		return err
	}
	defer func() { _ = doc.Body.Close() }()

	out := rf.output
	if out == "" {
		out = doc.FileName
	}
	if out == "-" {
		if _, err := io.Copy(env.Stdout, doc.Body); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}

	if err := fileutil.WriteAtomic(out, doc.Body, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	fmt.Fprintf(env.Stderr, "wrote %s (%d bytes, %s)\n", out, doc.Size, doc.MIMEType)
	return nil
}

// readData loads a non-empty data object. Files ending in .yaml or .yml are
// decoded as YAML, everything else (and stdin) as JSON.
func readData(path string, stdin io.Reader) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadData, err)
	}

	var data map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yamlutil.Decode(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data must be a non-empty object", ErrInvalidData)
	}
	return data, nil
}
