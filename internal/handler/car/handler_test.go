package car

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
	carService "github.com/zhouzirui/hypercar-hub/backend/internal/service/car"
	"github.com/zhouzirui/hypercar-hub/backend/internal/storage"
)

func setupRouter(t *testing.T, store car.Store) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	New(carService.NewService(store), nil).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeCar(t *testing.T, rr *httptest.ResponseRecorder) car.Car {
	t.Helper()
	var c car.Car
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	return c
}

func veloceBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Veloce",
		"description": "d",
		"brand":       "B",
		"price":       100000.0,
		"imageUrl":    "http://x/i.png",
	}
}

func TestCarLifecycle(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "cars.json"))
	r := setupRouter(t, store)

	rr := do(t, r, http.MethodPost, "/cars", veloceBody())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	created := decodeCar(t, rr)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, car.Car{ID: created.ID, Name: "Veloce", Description: "d", Brand: "B", Price: 100000, ImageURL: "http://x/i.png"}, created)

	rr = do(t, r, http.MethodGet, "/cars/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decodeCar(t, rr))

	update := veloceBody()
	update["name"] = "Veloce2"
	update["price"] = 120000.0
	update["id"] = "someone-else"
	rr = do(t, r, http.MethodPut, "/cars/"+created.ID, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeCar(t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Veloce2", updated.Name)
	assert.Equal(t, 120000.0, updated.Price)

	rr = do(t, r, http.MethodDelete, "/cars/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"car deleted"}`, rr.Body.String())

	rr = do(t, r, http.MethodGet, "/cars/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"car not found"}`, rr.Body.String())
}

func TestListEmptyStoreReturnsArray(t *testing.T) {
	r := setupRouter(t, storage.NewFileStore(filepath.Join(t.TempDir(), "cars.json")))

	rr := do(t, r, http.MethodGet, "/cars", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestBulkCreateKeepsOrder(t *testing.T) {
	r := setupRouter(t, car.NewMemoryStore([]car.Car{{ID: "existing", Name: "old"}}))

	drafts := []map[string]interface{}{veloceBody(), veloceBody(), veloceBody()}
	for i, name := range []string{"A", "B", "C"} {
		drafts[i]["name"] = name
	}

	rr := do(t, r, http.MethodPost, "/cars/bulk", drafts)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created []car.Car
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Len(t, created, 3)

	rr = do(t, r, http.MethodGet, "/cars", nil)
	var listed []car.Car
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 4)
	assert.Equal(t, "existing", listed[0].ID)
	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, name, listed[i+1].Name)
		assert.Equal(t, created[i].ID, listed[i+1].ID)
	}
}

func TestBulkCreateRejectsWholeBatch(t *testing.T) {
	store := car.NewMemoryStore(nil)
	r := setupRouter(t, store)

	bad := veloceBody()
	delete(bad, "brand")
	rr := do(t, r, http.MethodPost, "/cars/bulk", []map[string]interface{}{veloceBody(), bad})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"cars[1]: brand is required"}`, rr.Body.String())
	cars, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestCreateValidation(t *testing.T) {
	r := setupRouter(t, car.NewMemoryStore(nil))

	missing := veloceBody()
	delete(missing, "price")
	rr := do(t, r, http.MethodPost, "/cars", missing)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"price is required"}`, rr.Body.String())

	wrongType := veloceBody()
	wrongType["price"] = "expensive"
	rr = do(t, r, http.MethodPost, "/cars", wrongType)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, r, http.MethodPost, "/cars", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAcceptsPermissiveValues(t *testing.T) {
	r := setupRouter(t, car.NewMemoryStore(nil))

	body := veloceBody()
	body["name"] = ""
	body["price"] = -1.0
	rr := do(t, r, http.MethodPost, "/cars", body)

	require.Equal(t, http.StatusOK, rr.Code)
	c := decodeCar(t, rr)
	assert.Equal(t, "", c.Name)
	assert.Equal(t, -1.0, c.Price)
}

func TestMissingIDs(t *testing.T) {
	store := car.NewMemoryStore([]car.Car{{ID: "a"}})
	r := setupRouter(t, store)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPut, "/cars/missing", veloceBody()).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/cars/missing", nil).Code)

	cars, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []car.Car{{ID: "a"}}, cars)
}

func TestMalformedStorageIsServerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	r := setupRouter(t, storage.NewFileStore(path))

	rr := do(t, r, http.MethodGet, "/cars", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"storage is corrupted"}`, rr.Body.String())
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]car.Car, error) { return []car.Car{}, nil }
func (failingStore) Save(context.Context, []car.Car) error   { return errors.New("disk full") }

func TestWriteFailureIsServerError(t *testing.T) {
	r := setupRouter(t, failingStore{})

	rr := do(t, r, http.MethodPost, "/cars", veloceBody())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

type countingStore struct {
	*car.MemoryStore
	saves int
}

func (s *countingStore) Save(ctx context.Context, cars []car.Car) error {
	s.saves++
	return s.MemoryStore.Save(ctx, cars)
}

func TestBulkCreateRejectsNonListBodies(t *testing.T) {
	store := &countingStore{MemoryStore: car.NewMemoryStore(nil)}
	r := setupRouter(t, store)

	for _, body := range []string{`null`, `{}`, `{"name":"n"}`} {
		rr := do(t, r, http.MethodPost, "/cars/bulk", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, body)
		assert.JSONEq(t, `{"error":"request body must be a list of cars"}`, rr.Body.String(), body)
	}
	assert.Zero(t, store.saves)
}

func TestBulkCreateEmptyListIsAccepted(t *testing.T) {
	store := &countingStore{MemoryStore: car.NewMemoryStore(nil)}
	r := setupRouter(t, store)

	rr := do(t, r, http.MethodPost, "/cars/bulk", `[]`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateRejectsNonObjectBody(t *testing.T) {
	r := setupRouter(t, car.NewMemoryStore(nil))

	rr := do(t, r, http.MethodPost, "/cars", `[1, 2]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"request body must be a car object"}`, rr.Body.String())
}

func TestCreateRejectsTrailingData(t *testing.T) {
	store := &countingStore{MemoryStore: car.NewMemoryStore(nil)}
	r := setupRouter(t, store)

	body, err := json.Marshal(veloceBody())
	require.NoError(t, err)

	rr := do(t, r, http.MethodPost, "/cars", string(body)+" trailing")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, r, http.MethodPost, "/cars", string(body)+string(body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, store.saves)

	rr = do(t, r, http.MethodPost, "/cars", string(body)+"\n  ")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateCoercesNumericStringPrice(t *testing.T) {
	r := setupRouter(t, car.NewMemoryStore(nil))

	body := veloceBody()
	body["price"] = " 100.5"
	rr := do(t, r, http.MethodPost, "/cars", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 100.5, decodeCar(t, rr).Price)

	body["price"] = "expensive"
	rr = do(t, r, http.MethodPost, "/cars", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"invalid value for price"}`, rr.Body.String())
}
