package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"VolPull/pkg/logger"
)

func TestRecoverTurnsPanicInto500(t *testing.T) {
	e := echo.New()
	h := Recover(logger.Nop())(func(echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		require.NoError(t, h(e.NewContext(req, rec)))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecoverNilLogger(t *testing.T) {
	e := echo.New()
	h := Recover(nil)(func(echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecoverPassesThrough(t *testing.T) {
	e := echo.New()
	called := false
	h := Recover(logger.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}
