package httpapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docgen "github.com/alnah/go-docgen"
)

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	req, err := decodeRequest(strings.NewReader(
		`{"templateId":"nda","version":"v2","format":"pdf","data":{"term":{"years":2},"rate":1.5,"ids":[9007199254740993]}}`))
	require.NoError(t, err)

	assert.Equal(t, "nda", req.TemplateID)
	assert.Equal(t, "v2", req.Version)
	assert.Equal(t, docgen.FormatPDF, req.Format)
	assert.Equal(t, int64(2), req.Data["term"].(map[string]any)["years"])
	assert.Equal(t, 1.5, req.Data["rate"])
	assert.Equal(t, []any{int64(9007199254740993)}, req.Data["ids"])
}

func TestDecodeRequest_OptionalFieldsEmpty(t *testing.T) {
	t.Parallel()

	req, err := decodeRequest(strings.NewReader(`{"templateId":"nda","data":{"a":"b"}}`))
	require.NoError(t, err)

	assert.Empty(t, req.Version)
	assert.Empty(t, req.Format)
}

func TestDecodeRequest_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := decodeRequest(strings.NewReader(`{"format":"docx","extra":true}`))

	var verr *validationError
	require.ErrorAs(t, err, &verr)
	// missing templateId, missing data, bad enum, additional property
	assert.GreaterOrEqual(t, len(verr.messages), 4)
}

func TestDecodeRequest_TrailingData(t *testing.T) {
	t.Parallel()

	_, err := decodeRequest(strings.NewReader(`{"templateId":"nda","data":{"a":1}} {}`))

	var verr *validationError
	require.ErrorAs(t, err, &verr)
}
