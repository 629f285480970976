package decoder

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestNormalizeDescriptor_AcceptsBothKeyNames(t *testing.T) {
	a := NormalizeDescriptor(map[string]any{
		"filename": "report.pdf",
		"content":  "QQ==",
		"doc_type": "Police Report",
	})
	assert.Equal(t, Descriptor{Filename: "report.pdf", Content: "QQ==", Hint: "Police Report"}, a)

	b := NormalizeDescriptor(map[string]any{
		"name":         "photo.jpg",
		"contentBytes": "QQ==",
		"contentType":  "image/jpeg",
	})
	assert.Equal(t, Descriptor{Filename: "photo.jpg", Content: "QQ==", Hint: "image/jpeg"}, b)
}

func TestNormalizeDescriptor_PrefersFirstNonEmpty(t *testing.T) {
	d := NormalizeDescriptor(map[string]any{
		"filename":     "",
		"name":         "fallback.txt",
		"content":      42,
		"contentBytes": "QQ==",
	})
	assert.Equal(t, "fallback.txt", d.Filename)
	assert.Equal(t, "QQ==", d.Content)
	assert.Empty(t, d.Hint)
}

func TestDecode_SkipsMalformedAndDuplicates(t *testing.T) {
	d := NewDecoder(nil)

	got := d.Decode(context.Background(), []Descriptor{
		{Filename: "a.pdf", Content: b64("first")},
		{Filename: "", Content: b64("nameless")},
		{Filename: "b.png", Content: ""},
		{Filename: "a.pdf", Content: b64("second")},
		{Filename: "c.txt", Content: "!!not base64!!"},
		{Filename: "d.jpg", Content: b64("photo"), Hint: "Photo"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, []byte("first"), got[0].Data)
	assert.Equal(t, "application/pdf", got[0].MimeType)
	assert.Equal(t, "d.jpg", got[1].Filename)
	assert.Equal(t, "image/jpeg", got[1].MimeType)
	assert.Equal(t, "Photo", got[1].Hint)
}

func TestDecode_UndecodableDoesNotReserveFilename(t *testing.T) {
	d := NewDecoder(nil)

	got := d.Decode(context.Background(), []Descriptor{
		{Filename: "a.pdf", Content: "%%%"},
		{Filename: "a.pdf", Content: b64("ok")},
	})

	require.Len(t, got, 1)
	assert.Equal(t, []byte("ok"), got[0].Data)
}

func TestDecodeBase64_Variants(t *testing.T) {
	payload := []byte{0xfb, 0xff, 0xfe, 'x'}

	for name, encoded := range map[string]string{
		"std":     base64.StdEncoding.EncodeToString(payload),
		"raw std": base64.RawStdEncoding.EncodeToString(payload),
		"url":     base64.URLEncoding.EncodeToString(payload),
		"raw url": base64.RawURLEncoding.EncodeToString(payload),
	} {
		got, err := DecodeBase64(encoded)
		require.NoError(t, err, name)
		assert.Equal(t, payload, got, name)
	}

	got, err := DecodeBase64("aGVs\r\nbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = DecodeBase64("@@@")
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		filename string
		hint     string
		want     string
	}{
		{"scan.PDF", "", "application/pdf"},
		{"photo.jpeg", "", "image/jpeg"},
		{"page.TIF", "", "image/tiff"},
		{"phone.heic", "", "image/heic"},
		{"mail.eml", "", "message/rfc822"},
		{"blob", "image/png", "image/png"},
		{"blob", "Police Report", DefaultMimeType},
		{"noext", "", DefaultMimeType},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MimeType(tt.filename, tt.hint), tt.filename)
	}
}
