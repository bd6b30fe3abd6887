package validator

import (
	"strings"
	"testing"

	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *Validator {
	return NewFileValidator(config.FileUploadConfig{MaxFileSize: 16, MaxUploadSize: 32})
}

func TestValidateCSVFilename(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateCSVFilename("sales.csv"))
	assert.NoError(t, v.ValidateCSVFilename("EXPORT.TXT"))
	assert.ErrorIs(t, v.ValidateCSVFilename("report.xlsx"), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateCSVFilename("noext"), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateCSVFilename(" "), entity.ErrMissingField)
}

func TestReadCSV(t *testing.T) {
	v := newValidator()

	data, err := v.ReadCSV("a.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	data, err = v.ReadCSV("exact.csv", strings.NewReader(strings.Repeat("x", 16)))
	require.NoError(t, err)
	assert.Len(t, data, 16)

	_, err = v.ReadCSV("big.csv", strings.NewReader(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
}

func TestValidateRequests(t *testing.T) {
	v := newValidator()

	q := &entity.SubmitQueryRequest{Text: "  top 5 sales \n"}
	require.NoError(t, v.ValidateSubmitQuery(q))
	assert.Equal(t, "top 5 sales", q.Text)
	assert.ErrorIs(t, v.ValidateSubmitQuery(&entity.SubmitQueryRequest{Text: "   "}), entity.ErrMissingField)

	k := &entity.SetAPIKeyRequest{APIKey: " sk-1 "}
	require.NoError(t, v.ValidateSetAPIKey(k))
	assert.Equal(t, "sk-1", k.APIKey)
	assert.ErrorIs(t, v.ValidateSetAPIKey(&entity.SetAPIKeyRequest{}), entity.ErrMissingField)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_file1.csv", SanitizeFilename("../dir/my file(1).csv"))
}
