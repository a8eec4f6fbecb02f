package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/models"
	"github.com/ravalmohit390-eng/vidlink/internal/repositories"
	"github.com/ravalmohit390-eng/vidlink/internal/videos"
)

type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Insert(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) ListByOwner(_ context.Context, ownerID string, now time.Time) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, v := range s.videos {
		if v.OwnerID == ownerID && !v.Expired(now) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return video.Views, nil
}

func (s *fakeVideoStore) UpdateTitle(_ context.Context, id, ownerID, title string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Title = title
	s.videos[id] = video
	return video, nil
}

func (s *fakeVideoStore) DeleteOwned(_ context.Context, id, ownerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return "", repositories.ErrNotFound
	}
	delete(s.videos, id)
	return video.FileName, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (b *fakeBlobStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.blobs[name] = contents
	b.mu.Unlock()
	return b.URL(name), nil
}

func (b *fakeBlobStore) Delete(_ context.Context, name string) error {
	b.mu.Lock()
	delete(b.blobs, name)
	b.mu.Unlock()
	return nil
}

func (b *fakeBlobStore) URL(name string) string {
	return "/uploads/" + name
}

type videoTestEnv struct {
	mux      *http.ServeMux
	store    *fakeVideoStore
	blobs    *fakeBlobStore
	registry *videos.Registry
	token    string
}

func newVideoTestEnv(t *testing.T) *videoTestEnv {
	t.Helper()

	store := newFakeVideoStore()
	blobs := newFakeBlobStore()
	registry := videos.NewRegistry(store, blobs)
	tokens := newTestTokenManager()

	issued, err := tokens.Issue("owner-1", "alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Accounts: newInMemoryAccountStore(),
		Tokens:   tokens,
		Verifier: tokens,
		Registry: registry,
		Blobs:    blobs,
	})

	return &videoTestEnv{mux: mux, store: store, blobs: blobs, registry: registry, token: issued.Token}
}

func (env *videoTestEnv) do(t *testing.T, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("video", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func uploadTestVideo(t *testing.T, env *videoTestEnv, fields map[string]string) videoResponse {
	t.Helper()
	body, contentType := multipartUpload(t, fields, "holiday.mp4", "fake-video-bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := env.do(t, req, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201 got %d: %s", rec.Code, rec.Body)
	}

	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return resp
}

func TestUpload(t *testing.T) {
	env := newVideoTestEnv(t)

	resp := uploadTestVideo(t, env, map[string]string{"title": "My trip", "expiry": "2"})

	if resp.ID == "" || len(resp.ID) != 8 {
		t.Fatalf("expected an 8 character id, got %q", resp.ID)
	}
	if resp.Title != "My trip" {
		t.Fatalf("unexpected title %q", resp.Title)
	}
	if resp.OriginalName != "holiday.mp4" {
		t.Fatalf("unexpected original name %q", resp.OriginalName)
	}
	if resp.Views != 0 {
		t.Fatalf("expected 0 views, got %d", resp.Views)
	}
	if resp.Expiry == nil {
		t.Fatal("expected expiry to be set")
	}
	if resp.FileName == "" || resp.URL != "/uploads/"+resp.FileName {
		t.Fatalf("expected stored file url, got %q / %q", resp.FileName, resp.URL)
	}

	if _, stored := env.blobs.blobs[resp.FileName]; !stored {
		t.Fatalf("expected blob %q to be stored", resp.FileName)
	}
}

func TestUploadRequiresAuth(t *testing.T) {
	env := newVideoTestEnv(t)

	body, contentType := multipartUpload(t, nil, "holiday.mp4", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := env.do(t, req, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	env := newVideoTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("title", "no file"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := env.do(t, req, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body)
	}
}

func TestUploadRejectsBadExpiry(t *testing.T) {
	env := newVideoTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"expiry": "soon"}, "holiday.mp4", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := env.do(t, req, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body)
	}
}

func TestViewUnprotected(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body)
	}

	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsProtected {
		t.Fatal("unprotected video must not be marked protected")
	}
	if resp.FileName == "" {
		t.Fatal("expected file reference to be disclosed")
	}
	if resp.Views != 1 {
		t.Fatalf("expected views to become 1, got %d", resp.Views)
	}
}

func TestViewProtected(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, map[string]string{"password": "s3cret"})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body)
	}

	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsProtected {
		t.Fatal("expected isProtected to be set")
	}
	if resp.FileName != "" || resp.URL != "" {
		t.Fatalf("file reference must be withheld, got %q / %q", resp.FileName, resp.URL)
	}
	if resp.Views != 0 {
		t.Fatalf("a withheld read must not count a view, got %d", resp.Views)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(raw, []byte("s3cret")) {
		t.Fatal("password leaked into the response payload")
	}
}

func TestViewNotFound(t *testing.T) {
	env := newVideoTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/missing12", nil), false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestViewExpired(t *testing.T) {
	env := newVideoTestEnv(t)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.registry.NowFunc = func() time.Time { return t0 }
	created := uploadTestVideo(t, env, map[string]string{"expiry": "1"})

	env.registry.NowFunc = func() time.Time { return t0.Add(90 * time.Minute) }
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil), false)
	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410 got %d: %s", rec.Code, rec.Body)
	}
}

func TestVerifyPassword(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, map[string]string{"password": "s3cret"})

	wrong, _ := json.Marshal(verifyRequest{Password: "nope"})
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/videos/"+created.ID+"/verify", bytes.NewReader(wrong)), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401 got %d", rec.Code)
	}

	right, _ := json.Marshal(verifyRequest{Password: "s3cret"})
	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/api/videos/"+created.ID+"/verify", bytes.NewReader(right)), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("correct password: expected 200 got %d: %s", rec.Code, rec.Body)
	}

	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FileName == "" {
		t.Fatal("expected file reference after verification")
	}
	if resp.Views != 1 {
		t.Fatalf("expected views to become 1, got %d", resp.Views)
	}
}

func TestListOwnVideos(t *testing.T) {
	env := newVideoTestEnv(t)
	uploadTestVideo(t, env, map[string]string{"title": "first"})
	uploadTestVideo(t, env, map[string]string{"title": "second"})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body)
	}

	var resp []videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(resp))
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos", nil), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", rec.Code)
	}
}

func TestRename(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, nil)

	body, _ := json.Marshal(renameRequest{Title: "Renamed"})
	req := httptest.NewRequest(http.MethodPatch, "/api/videos/"+created.ID, bytes.NewReader(body))
	rec := env.do(t, req, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body)
	}

	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %q", resp.Title)
	}
}

func TestRemove(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/videos/"+created.ID, nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body)
	}

	if _, stored := env.blobs.blobs[created.FileName]; stored {
		t.Fatal("expected backing blob to be removed")
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil), false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", rec.Code)
	}
}

func TestRemoveByNonOwner(t *testing.T) {
	env := newVideoTestEnv(t)
	created := uploadTestVideo(t, env, nil)

	intruderTokens := newTestTokenManager()
	issued, err := intruderTokens.Issue("intruder", "mallory")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/"+created.ID, nil), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("record must survive a non-owner delete, got %d", rec.Code)
	}
}

func TestVerifyRateLimited(t *testing.T) {
	handler := VideoHandler{Registry: videos.NewRegistry(newFakeVideoStore(), nil), VerifyLimiter: denyAllLimiter{}}

	body, _ := json.Marshal(verifyRequest{Password: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/videos/abc/verify", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.VerifyPassword(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}
