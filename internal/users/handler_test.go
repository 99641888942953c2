package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/store/storetest"
)

type fakeIdentity struct {
	deleted []string
	err     error
}

func (f *fakeIdentity) DeleteAccount(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return f.err
}

func setup(t *testing.T) (*storetest.Memory[models.User], *fakeIdentity, *observer.ObservedLogs, http.Handler) {
	t.Helper()
	mem := storetest.NewMemory[models.User]()
	idp := &fakeIdentity{}
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHandler(mem, idp, zap.New(core))

	r := chi.NewRouter()
	r.Post("/users", h.Save)
	r.Get("/users", h.List)
	r.Get("/request-podcaster", h.PodcasterRequests)
	r.Get("/users/email/{email}", h.GetByEmail)
	r.Put("/users/email/{email}", h.UpdateProfile)
	r.Put("/users/request/{email}", h.ResolveRequest)
	r.Delete("/users/{id}", h.Delete)
	r.Get("/admin-stats", h.Stats)
	return mem, idp, logs, r
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSaveIsIdempotentByEmail(t *testing.T) {
	mem, _, _, h := setup(t)

	w := send(h, http.MethodPost, "/users", `{"email":"a@b.com","name":"Ann","uid":"u1"}`)
	var first struct {
		Message    string  `json:"message"`
		InsertedID *string `json:"insertedId"`
	}
	json.Unmarshal(w.Body.Bytes(), &first)
	if w.Code != http.StatusOK || first.InsertedID == nil {
		t.Fatalf("first save: got %d %s", w.Code, w.Body.String())
	}

	w = send(h, http.MethodPost, "/users", `{"email":"a@b.com","name":"Someone else"}`)
	var second struct {
		Message    string  `json:"message"`
		InsertedID *string `json:"insertedId"`
	}
	json.Unmarshal(w.Body.Bytes(), &second)
	if second.Message != "User already exists" || second.InsertedID != nil {
		t.Errorf("duplicate save: got %s", w.Body.String())
	}
	if mem.Len() != 1 {
		t.Errorf("expected 1 user, got %d", mem.Len())
	}
}

func TestGetByEmailAndRequests(t *testing.T) {
	mem, _, _, h := setup(t)
	mem.Seed(t,
		models.User{Email: "a@b.com", Name: "Ann", Flag: true},
		models.User{Email: "c@d.com", Name: "Cid"},
		models.User{Email: "e@f.com", Name: "Eve", Flag: true},
	)

	w := send(h, http.MethodGet, "/users/email/a@b.com", "")
	var u models.User
	json.Unmarshal(w.Body.Bytes(), &u)
	if w.Code != http.StatusOK || u.Name != "Ann" {
		t.Errorf("get by email: got %d %+v", w.Code, u)
	}
	if w := send(h, http.MethodGet, "/users/email/nobody@x.com", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", w.Code)
	}

	var requests []models.User
	json.Unmarshal(send(h, http.MethodGet, "/request-podcaster", "").Body.Bytes(), &requests)
	if len(requests) != 2 || requests[0].Email != "e@f.com" || requests[1].Email != "a@b.com" {
		t.Errorf("expected the flagged users newest first, got %+v", requests)
	}

	var all []models.User
	json.Unmarshal(send(h, http.MethodGet, "/users", "").Body.Bytes(), &all)
	if len(all) != 3 || all[0].Email != "e@f.com" || all[2].Email != "a@b.com" {
		t.Errorf("expected 3 users newest first, got %+v", all)
	}

	var stats map[string]int64
	json.Unmarshal(send(h, http.MethodGet, "/admin-stats", "").Body.Bytes(), &stats)
	if stats["users"] != 3 {
		t.Errorf("expected users 3, got %v", stats)
	}
}

func TestUpdateProfileIsPartial(t *testing.T) {
	mem, _, _, h := setup(t)
	mem.Seed(t, models.User{Email: "a@b.com", Name: "Ann", Role: "listener", UID: "u1"})

	w := send(h, http.MethodPut, "/users/email/a@b.com", `{"name":"Anne","username":"anne","phoneNumber":"123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	u, _ := mem.FindOne(context.Background(), map[string]interface{}{"email": "a@b.com"})
	if u.Name != "Anne" || u.Username != "anne" || u.PhoneNumber != "123" {
		t.Errorf("profile not updated: %+v", u)
	}
	if u.Role != "listener" || u.UID != "u1" {
		t.Errorf("untouched fields changed: %+v", u)
	}

	if w := send(h, http.MethodPut, "/users/email/nobody@x.com", `{"name":"x"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", w.Code)
	}
}

func TestResolveRequestSetsRoleAndFlag(t *testing.T) {
	mem, _, _, h := setup(t)
	mem.Seed(t, models.User{Email: "a@b.com", Flag: true})

	if w := send(h, http.MethodPut, "/users/request/a@b.com", `{"flag":false,"role":"podcaster"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	u, _ := mem.FindOne(context.Background(), map[string]interface{}{"email": "a@b.com"})
	if u.Flag || u.Role != "podcaster" {
		t.Errorf("expected role podcaster and flag cleared, got %+v", u)
	}
	if w := send(h, http.MethodPut, "/users/request/x@y.com", `{"flag":false,"role":"podcaster"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", w.Code)
	}
}

func TestDeleteRemovesLinkedAccount(t *testing.T) {
	mem, idp, logs, h := setup(t)
	ids := mem.Seed(t,
		models.User{Email: "a@b.com", UID: "uid-a"},
		models.User{Email: "c@d.com"},
	)

	if w := send(h, http.MethodDelete, "/users/"+ids[0], ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(idp.deleted) != 1 || idp.deleted[0] != "uid-a" {
		t.Errorf("expected account uid-a deleted, got %v", idp.deleted)
	}

	if w := send(h, http.MethodDelete, "/users/"+ids[1], ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(idp.deleted) != 1 {
		t.Errorf("user without uid must not touch the identity provider, got %v", idp.deleted)
	}
	if logs.FilterMessage("user has no linked account").Len() != 1 {
		t.Error("expected a warning for the missing uid")
	}
	if mem.Len() != 0 {
		t.Errorf("expected no users left, got %d", mem.Len())
	}

	if w := send(h, http.MethodDelete, "/users/"+primitive.NewObjectID().Hex(), ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
}

func TestDeleteKeepsGoingWhenAccountRemovalFails(t *testing.T) {
	mem, idp, logs, h := setup(t)
	idp.err = errors.New("identity provider down")
	ids := mem.Seed(t, models.User{Email: "a@b.com", UID: "uid-a"})

	if w := send(h, http.MethodDelete, "/users/"+ids[0], ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mem.Len() != 0 {
		t.Error("profile should stay deleted")
	}
	if logs.FilterMessage("failed to delete linked account").Len() != 1 {
		t.Error("expected the account failure to be logged")
	}
}
