package validator

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

// Validator validates chat requests and file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

// ValidateCSVFilename checks the extension of an uploaded delimited-text file.
func (v *Validator) ValidateCSVFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q (allowed: csv, txt)", entity.ErrInvalidExtension, ext)
	}
	return nil
}

// ReadCSV reads the whole upload, failing once it exceeds the size limit.
func (v *Validator) ReadCSV(filename string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, v.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}
	if int64(len(data)) > v.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: file '%s' exceeds %d bytes", entity.ErrFileTooLarge, filename, v.cfg.MaxFileSize)
	}
	return data, nil
}

func (v *Validator) ValidateSubmitQuery(req *entity.SubmitQueryRequest) error {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateSetAPIKey(req *entity.SetAPIKeyRequest) error {
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		return fmt.Errorf("%w: api_key", entity.ErrMissingField)
	}
	return nil
}

// SanitizeFilename strips directories and characters unsafe in headers.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
		`"`, "",
	)
	return replacer.Replace(filename)
}
