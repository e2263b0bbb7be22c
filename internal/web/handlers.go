package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mcncl/jsonsheet/internal/analyzer"
	"github.com/mcncl/jsonsheet/internal/converter"
	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/logging"
	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/mcncl/jsonsheet/internal/parser"
	"github.com/mcncl/jsonsheet/internal/sheet"
)

//go:embed templates/index.html
var templateFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

// ConversionIDHeader carries the id logged for every conversion request.
const ConversionIDHeader = "X-Conversion-ID"

type indexData struct {
	Converters       []converter.Info
	DefaultConverter string
	Formats          []sheet.Format
	DefaultFormat    string
	MaxUploadMB      int64
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	defaultConverter := s.cfg.Converter
	if kind, err := converter.ParseKind(defaultConverter); err == nil {
		defaultConverter = kind.String()
	}
	data := indexData{
		Converters:       converter.Kinds(),
		DefaultConverter: defaultConverter,
		Formats:          []sheet.Format{sheet.FormatXLSX, sheet.FormatCSV},
		DefaultFormat:    strings.ToLower(s.cfg.Output.Format),
		MaxUploadMB:      s.cfg.Server.MaxUploadBytes >> 20,
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		respondError(w, r, errors.NewOutputError("failed to render upload form", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleListConverters returns the available converters as JSON.
func (s *Server) handleListConverters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, converter.Kinds())
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleConvert converts an uploaded .json file and returns the spreadsheet as an attachment.
//
// Form fields: file (required, .json), converter_type (defaults to the configured converter),
// format (xlsx or csv, defaults to the configured format).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	conversionID := uuid.New().String()
	w.Header().Set(ConversionIDHeader, conversionID)

	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = s.cfg.Output.Format
	}
	writer, err := sheet.NewWriter(sheet.Format(format), s.cfg.WriterOptions())
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := logging.WithFields(r.Context(),
		"conversion_id", conversionID,
		"converter", up.kind.String(),
		"filename", up.filename,
	)

	table, err := converter.Convert(up.kind, up.doc)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var out bytes.Buffer
	if err := writer.Write(&out, table); err != nil {
		respondError(w, r, errors.NewOutputError("failed to write spreadsheet", err))
		return
	}

	name := sheet.FileName(s.cfg.Output.FilePattern, up.kind.String(), writer.Extension())
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	if _, err := w.Write(out.Bytes()); err != nil {
		logger.Error("failed to send spreadsheet", "error", err)
		return
	}

	logger.Info("conversion finished",
		"rows", table.Len(),
		"columns", len(table.Columns),
		"bytes", out.Len(),
	)
}

// handleInspect converts an upload and returns a column profile instead of a file.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(ConversionIDHeader, uuid.New().String())

	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	table, err := converter.Convert(up.kind, up.doc)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, analyzer.Analyze(up.kind.String(), table))
}

// upload is a parsed conversion request.
type upload struct {
	filename string
	kind     converter.Kind
	doc      models.JSONValue
}

// readUpload validates the multipart form, resolves the converter and parses the JSON file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, errors.NewInputError("file too large or invalid form", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.NewInputError("no file provided", errors.ErrNoInput)
	}
	defer func() { _ = file.Close() }()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".json") {
		return nil, errors.NewInputError(
			fmt.Sprintf("file %q must have a .json extension", header.Filename),
			errors.ErrInvalidFilePath,
		)
	}

	token := r.FormValue("converter_type")
	if token == "" {
		token = s.cfg.Converter
	}
	kind, err := converter.ParseKind(token)
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(file)
	if err != nil {
		return nil, err
	}

	return &upload{filename: header.Filename, kind: kind, doc: doc}, nil
}
