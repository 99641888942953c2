package podcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/store"
	"github.com/podcastify/podcastify-api/internal/store/storetest"
)

type fakeFiles struct {
	objects map[string][]byte
	removed []string
}

func (f *fakeFiles) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeFiles) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func setup(t *testing.T) (*storetest.Memory[models.Podcast], *fakeFiles, http.Handler) {
	t.Helper()
	mem := storetest.NewMemory[models.Podcast]()
	files := &fakeFiles{objects: map[string][]byte{}}
	h := NewHandler(mem, files, 10<<20, zap.NewNop())
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }

	r := chi.NewRouter()
	r.Get("/podcast", h.List)
	r.Get("/podcast/{id}", h.Get)
	r.Post("/upload", h.Create)
	r.Put("/podcast/{id}", h.Update)
	r.Delete("/podcast/{id}", h.Delete)
	r.Get("/manage-podcast", h.Manage)
	return mem, files, r
}

func request(t *testing.T, h http.Handler, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []models.Podcast {
	t.Helper()
	var out []models.Podcast
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestListSearchAndFilters(t *testing.T) {
	mem, _, h := setup(t)
	mem.Seed(t,
		models.Podcast{Title: "Foo Fighters live", Category: "Music", Tags: []string{"english"}},
		models.Podcast{Title: "All about FOOD", Category: "Cooking", Tags: []string{"bangla"}},
		models.Podcast{Title: "Bar talk", Category: "Music", Tags: []string{"english"}},
		models.Podcast{Title: "foo.bar", Category: "music", Tags: []string{"English", "tech"}},
	)

	got := decodeList(t, request(t, h, http.MethodGet, "/podcast?search=foo", "", nil))
	if len(got) != 3 {
		t.Fatalf("search=foo: expected 3, got %d", len(got))
	}
	for _, p := range got {
		if !strings.Contains(strings.ToLower(p.Title), "foo") {
			t.Errorf("unexpected match %q", p.Title)
		}
	}
	if got[0].Title != "foo.bar" {
		t.Errorf("expected newest first, got %q", got[0].Title)
	}

	got = decodeList(t, request(t, h, http.MethodGet, "/podcast?search=foo&category=music&language=english", "", nil))
	if len(got) != 2 {
		t.Fatalf("combined filters: expected 2, got %d", len(got))
	}
	for _, p := range got {
		if !strings.EqualFold(p.Category, "music") {
			t.Errorf("category filter violated by %q", p.Title)
		}
	}

	got = decodeList(t, request(t, h, http.MethodGet, "/podcast?search=o.b", "", nil))
	if len(got) != 1 || got[0].Title != "foo.bar" {
		t.Errorf("search must be literal, got %+v", got)
	}

	got = decodeList(t, request(t, h, http.MethodGet, "/podcast?search=nothing-here", "", nil))
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty array, got %v", got)
	}
}

func TestManagePagination(t *testing.T) {
	mem, _, h := setup(t)
	for i := 0; i < 12; i++ {
		email := "a@b.com"
		if i%3 == 0 {
			email = "other@b.com"
		}
		mem.Seed(t, models.Podcast{Title: string(rune('A' + i)), UserEmail: email})
	}

	w := request(t, h, http.MethodGet, "/manage-podcast?userEmail=a@b.com&page=1&limit=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Podcasts []models.Podcast `json:"podcasts"`
		Total    int64            `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	// a@b.com owns B C E F H I K L; newest first: L K I H F | E C B
	if resp.Total != 8 {
		t.Errorf("expected total 8, got %d", resp.Total)
	}
	want := []string{"E", "C", "B"}
	if len(resp.Podcasts) != len(want) {
		t.Fatalf("expected %d podcasts, got %d", len(want), len(resp.Podcasts))
	}
	for i, p := range resp.Podcasts {
		if p.UserEmail != "a@b.com" || p.Title != want[i] {
			t.Errorf("%d: got %s/%s, want a@b.com/%s", i, p.UserEmail, p.Title, want[i])
		}
	}

	if w := request(t, h, http.MethodGet, "/manage-podcast?page=0", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", w.Code)
	}
}

func TestCreateJSONAndDelete(t *testing.T) {
	mem, _, h := setup(t)
	other := mem.Seed(t, models.Podcast{Title: "other"})

	body := `{"title":"New","userEmail":"a@b.com","tags":"x, y","releaseDate":"2024-01-02"}`
	w := request(t, h, http.MethodPost, "/upload", "application/json", strings.NewReader(body))
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		InsertedID string `json:"insertedId"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	p, err := mem.FindByID(context.Background(), created.InsertedID)
	if err != nil {
		t.Fatalf("created podcast not stored: %v", err)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "x" || p.Tags[1] != "y" || p.ReleaseDate == nil {
		t.Errorf("unexpected stored podcast %+v", p)
	}

	if w := request(t, h, http.MethodDelete, "/podcast/"+created.InsertedID, "", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if mem.Len() != 1 {
		t.Errorf("expected only the other podcast left, got %d", mem.Len())
	}
	if w := request(t, h, http.MethodGet, "/podcast/"+other[0], "", nil); w.Code != http.StatusOK {
		t.Errorf("other podcast should be untouched, got %d", w.Code)
	}
	if w := request(t, h, http.MethodDelete, "/podcast/"+primitive.NewObjectID().Hex(), "", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete unknown: expected 404, got %d", w.Code)
	}
}

func TestUpdateUpserts(t *testing.T) {
	mem, _, h := setup(t)
	id := primitive.NewObjectID().Hex()

	w := request(t, h, http.MethodPut, "/podcast/"+id, "application/json", strings.NewReader(`{"title":"Fresh","tags":["a"]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected upsert to create a podcast, got %d", mem.Len())
	}
	p, err := mem.FindByID(context.Background(), id)
	if err != nil || p.Title != "Fresh" {
		t.Errorf("expected upserted podcast under %s, got %+v %v", id, p, err)
	}

	request(t, h, http.MethodPut, "/podcast/"+id, "application/json", strings.NewReader(`{"title":"Renamed"}`))
	p, _ = mem.FindByID(context.Background(), id)
	if p.Title != "Renamed" || len(p.Tags) != 0 {
		t.Errorf("expected full replace, got %+v", p)
	}
	if mem.Len() != 1 {
		t.Errorf("second update must not insert, got %d", mem.Len())
	}
}

func TestCreateMultipartStoresFiles(t *testing.T) {
	mem, files, h := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "With files")
	mw.WriteField("tags", "one")
	mw.WriteField("tags", " two ")
	cover, _ := mw.CreateFormFile("coverImage", "My Cover.PNG")
	cover.Write([]byte("png-bytes"))
	audio, _ := mw.CreateFormFile("audioFile", "episode 1.mp3")
	audio.Write([]byte("mp3-bytes"))
	mw.Close()

	w := request(t, h, http.MethodPost, "/upload", mw.FormDataContentType(), &buf)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if string(files.objects["images/1700000000000-my-cover.png"]) != "png-bytes" {
		t.Errorf("cover not stored, have %v", keys(files.objects))
	}
	if string(files.objects["audios/1700000000000-episode-1.mp3"]) != "mp3-bytes" {
		t.Errorf("audio not stored, have %v", keys(files.objects))
	}

	list, _ := mem.Find(context.Background(), nil, store.FindOptions{})
	if len(list) != 1 {
		t.Fatalf("expected one podcast, got %d", len(list))
	}
	p := list[0]
	if p.CoverImageURL != "/uploads/images/1700000000000-my-cover.png" || p.AudioFileURL != "/uploads/audios/1700000000000-episode-1.mp3" {
		t.Errorf("unexpected urls %q %q", p.CoverImageURL, p.AudioFileURL)
	}
	if len(p.Tags) != 2 || p.Tags[1] != "two" {
		t.Errorf("unexpected tags %q", p.Tags)
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}


func TestListPagedReturnsTotal(t *testing.T) {
	mem, _, h := setup(t)
	for i := 0; i < 7; i++ {
		mem.Seed(t, models.Podcast{Title: "foo " + string(rune('A'+i))})
	}
	mem.Seed(t, models.Podcast{Title: "bar"}, models.Podcast{Title: "baz"})

	var resp struct {
		Podcasts []models.Podcast `json:"podcasts"`
		Total    int64            `json:"total"`
	}
	w := request(t, h, http.MethodGet, "/podcast?search=foo&page=0&limit=5", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if resp.Total != 7 || len(resp.Podcasts) != 5 {
		t.Fatalf("page 0: got total %d, %d podcasts", resp.Total, len(resp.Podcasts))
	}
	if resp.Podcasts[0].Title != "foo G" {
		t.Errorf("expected newest first, got %q", resp.Podcasts[0].Title)
	}

	resp.Podcasts = nil
	w = request(t, h, http.MethodGet, "/podcast?search=foo&page=1&limit=5", "", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 7 || len(resp.Podcasts) != 2 || resp.Podcasts[1].Title != "foo A" {
		t.Errorf("page 1: got total %d, %+v", resp.Total, resp.Podcasts)
	}

	if w := request(t, h, http.MethodGet, "/podcast?limit=0", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
}

func TestFailedUpdateRemovesUploadedFiles(t *testing.T) {
	mem, files, h := setup(t)
	mem.Err = errors.New("connection reset")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Replaced")
	cover, _ := mw.CreateFormFile("coverImage", "cover.png")
	cover.Write([]byte("png-bytes"))
	mw.Close()

	w := request(t, h, http.MethodPut, "/podcast/"+primitive.NewObjectID().Hex(), mw.FormDataContentType(), &buf)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(files.objects) != 0 {
		t.Errorf("uploaded files should be removed, still have %v", keys(files.objects))
	}
	if len(files.removed) != 1 || files.removed[0] != "images/1700000000000-cover.png" {
		t.Errorf("unexpected removals %v", files.removed)
	}
}
