package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct {
	key, contentType string
	err              error
}

func (s *stubSigner) SignPut(_ context.Context, key, contentType string) (string, error) {
	s.key, s.contentType = key, contentType
	if s.err != nil {
		return "", s.err
	}
	return "https://phm-uploads.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc", nil
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadSignsBothFieldsPresent(t *testing.T) {
	signer := &stubSigner{}
	h := NewHandler(signer, "phm-uploads", quietLogger())

	rec := post(h, `{"filename":"avatar-68.png","filetype":"image/png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://phm-uploads.s3.amazonaws.com/avatar-68.png", resp.URL)
	assert.NotEmpty(t, resp.SignedRequest)
	assert.Equal(t, "avatar-68.png", signer.key)
	assert.Equal(t, "image/png", signer.contentType)
}

func TestUploadAcceptsCamelCaseFields(t *testing.T) {
	h := NewHandler(&stubSigner{}, "phm-uploads", quietLogger())
	rec := post(h, `{"fileName":"logo.svg","fileType":"image/svg+xml"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadMissingFields(t *testing.T) {
	h := NewHandler(&stubSigner{}, "phm-uploads", quietLogger())
	bodies := []string{
		`{"filetype":"image/png"}`,
		`{"filename":"a.png"}`,
		`{}`,
		`not json`,
		``,
	}
	for _, body := range bodies {
		rec := post(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"message":"Missing fileName or fileType on body"}`, rec.Body.String(), body)
	}
}

func TestUploadSignerFailureIsBadRequest(t *testing.T) {
	h := NewHandler(&stubSigner{err: errors.New("no credentials")}, "phm-uploads", quietLogger())
	rec := post(h, `{"filename":"a.png","filetype":"image/png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestS3SignerProducesPresignedURL(t *testing.T) {
	s, err := NewS3Signer(context.Background(), S3Options{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "eu-central-1",
		Bucket:          "phm-uploads",
		Expiry:          time.Minute,
	})
	require.NoError(t, err)

	signed, err := s.SignPut(context.Background(), "avatar.png", "image/png")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "phm-uploads")
	assert.Contains(t, u.Path, "avatar.png")
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIAEXAMPLE")
}

func TestS3SignerRequiresBucket(t *testing.T) {
	_, err := NewS3Signer(context.Background(), S3Options{Region: "eu-central-1"})
	assert.Error(t, err)
}
