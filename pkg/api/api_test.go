package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, r *gin.Engine, url string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	board := &Board{}
	r := SetRouter(board, t.TempDir(), []string{"Coin", "Not_Money"})

	since := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	board.Publish(stabilizer.Status{Label: "Coin", Confidence: 0.93, Locked: true, Since: since, LockCount: 2})

	w := get(t, r, "/api/Status")
	require.Equal(t, http.StatusOK, w.Code)
	var got stabilizer.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Coin", got.Label)
	require.True(t, got.Locked)
	require.Equal(t, 2, got.LockCount)
	require.True(t, since.Equal(got.Since))

	w = get(t, r, "/api/Classes")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `["Coin","Not_Money"]`, w.Body.String())
}

func TestCaptures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "low_level.csv"), []byte("1,2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input.png"), []byte("png"), 0644))
	r := SetRouter(&Board{}, dir, nil)

	w := get(t, r, "/api/Captures")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `["input.png","low_level.csv"]`, w.Body.String())

	w = get(t, r, "/api/Capture?name=low_level.csv")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1,2\n", w.Body.String())

	require.Equal(t, http.StatusNotAcceptable, get(t, r, "/api/Capture").Code)
	require.Equal(t, http.StatusNotFound, get(t, r, "/api/Capture?name=mid_level.csv").Code)
	require.Equal(t, http.StatusNotFound, get(t, r, "/api/Capture?name=../secret").Code)
}

func TestCapturesMissingDir(t *testing.T) {
	r := SetRouter(&Board{}, filepath.Join(t.TempDir(), "missing"), nil)
	require.Equal(t, http.StatusInternalServerError, get(t, r, "/api/Captures").Code)
}
