package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()
	gt.NoError(t, errutil.Handle(ctx, nil, "nothing"))

	err := goerr.New("boom", goerr.V("risk_id", "R1"))
	gt.Error(t, errutil.Handle(ctx, err, "failed")).Is(err)
}

func TestHandleHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("client error exposes message", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, errors.New("risk not found"), http.StatusNotFound)

		gt.Number(t, w.Code).Equal(http.StatusNotFound)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

		var body struct {
			Error string `json:"error"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Error).Equal("risk not found")
	})

	t.Run("server error hides details", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, goerr.New("db password rejected"), http.StatusInternalServerError)

		gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
		var body struct {
			Error string `json:"error"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Error).Equal("Internal Server Error")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, nil, http.StatusInternalServerError)
		gt.Number(t, w.Body.Len()).Equal(0)
	})
}
