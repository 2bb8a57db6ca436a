package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocs struct {
	err      error
	filename string
	content  []byte
}

func (f *fakeDocs) Ingest(_ context.Context, content []byte, filename string) (*models.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filename = filename
	f.content = content
	return &models.IngestResult{DocumentID: "doc-1", Filename: filename, Chunks: 2, Summary: "- one\n- two"}, nil
}

func (f *fakeDocs) Status() models.Status {
	return models.Status{Loaded: f.filename != "", Filename: f.filename}
}

type fakeAnswerer struct {
	ans *models.Answer
	err error
}

func (f *fakeAnswerer) Answer(_ context.Context, q string) (*models.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ans, nil
}

type fakeQuizzer struct {
	question string
	err      error
}

func (f *fakeQuizzer) Generate(context.Context) (string, error) {
	return f.question, f.err
}

func (f *fakeQuizzer) Evaluate(a string) (*models.Verdict, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Verdict{Correct: strings.EqualFold(a, "paris"), CorrectAnswer: "Paris"}, nil
}

func newTestServer(docs *fakeDocs, ans *fakeAnswerer, quiz *fakeQuizzer) http.Handler {
	cfg := &config.ServerConfig{MaxUploadBytes: 1024}
	return NewServer(docs, ans, quiz, cfg, nil).Handler()
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleUpload(t *testing.T) {
	docs := &fakeDocs{}
	h := newTestServer(docs, &fakeAnswerer{}, &fakeQuizzer{})

	body, ct := multipartBody(t, "file", "notes.txt", []byte("hello world"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res models.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, "- one\n- two", res.Summary)
	assert.Equal(t, "notes.txt", docs.filename)
	assert.Equal(t, "hello world", string(docs.content))
}

func TestHandleUpload_MissingFile(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{})
	body, ct := multipartBody(t, "other", "notes.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Code)
}

func TestHandleUpload_TooLarge(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{})
	body, ct := multipartBody(t, "file", "big.txt", bytes.Repeat([]byte("a"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "too_large", decodeError(t, rec).Code)
}

func TestHandleUpload_ExtractionFailure(t *testing.T) {
	docs := &fakeDocs{err: fmt.Errorf("%w: bad pdf", models.ErrExtractionFailure)}
	h := newTestServer(docs, &fakeAnswerer{}, &fakeQuizzer{})
	body, ct := multipartBody(t, "file", "broken.pdf", []byte("not a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "extraction_failure", decodeError(t, rec).Code)
}

func TestHandleAsk(t *testing.T) {
	ans := &fakeAnswerer{ans: &models.Answer{Text: "Paris", Citation: "The capital...", Chunks: []int{0}}}
	h := newTestServer(&fakeDocs{}, ans, &fakeQuizzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"capital?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp answerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Paris", resp.Answer)
	assert.Equal(t, `Paris (Source: "The capital...")`, resp.Formatted)
	assert.Equal(t, []int{0}, resp.Chunks)
}

func TestHandleAsk_Unavailable(t *testing.T) {
	ans := &fakeAnswerer{ans: &models.Answer{Text: "[LLM error: unable to generate response]", Unavailable: true}}
	h := newTestServer(&fakeDocs{}, ans, &fakeQuizzer{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"capital?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleAsk_Validation(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{})
	for _, body := range []string{`{"question":"   "}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_input", decodeError(t, rec).Code, body)
	}
}

func TestHandleAsk_NoDocument(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{err: models.ErrNoDocumentLoaded}, &fakeQuizzer{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_document_loaded", decodeError(t, rec).Code)
}

func TestHandleQuiz(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{question: "Capital of France?"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quiz/question", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"question":"Capital of France?"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/evaluate", strings.NewReader(`{"answer":"paris"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var v models.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.True(t, v.Correct)
	assert.Equal(t, "Paris", v.CorrectAnswer)
}

func TestHandleQuiz_Errors(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{err: models.ErrNoQuestionGenerated})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/evaluate", strings.NewReader(`{"answer":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_question_generated", decodeError(t, rec).Code)

	h = newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{err: models.ErrGenerationUnavailable})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quiz/question", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "generation_unavailable", decodeError(t, rec).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&fakeDocs{}, &fakeAnswerer{}, &fakeQuizzer{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/ask", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrIndexBuild), http.StatusBadGateway},
		{models.ErrIndexNotReady, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, got, tt.err.Error())
	}
}
