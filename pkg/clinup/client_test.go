package clinup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedInClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := NewSession(nil)
	require.NoError(t, s.SignIn("tok-123", []string{RoleHost}))
	c := New(srv.URL, s)
	c.HTTPClient = srv.Client()
	return c
}

func TestClient_MissingTokenSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))
	_, err := c.ValidateReservation(context.Background(), "7")

	require.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, MissingTokenMessage, UserMessage(err, "generic"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestClient_InjectsBearer(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/reservation/42/details", r.URL.Path)
		io.WriteString(w, `{"id":42,"statut":"en attente","prix":"80.50","tasks":[],"postulers":[],"description":null}`)
	})

	r, err := c.Reservation(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, ID("42"), r.ID)
	assert.Equal(t, "en attente", r.Statut)
	assert.Equal(t, "80.5", r.Prix.String())
	assert.Nil(t, r.Description)
}

func TestClient_Non2xxIsHTTPError(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"message":"Vous avez déjà postulé"}`)
	})

	err := c.Apply(context.Background(), "9", "dispo demain")
	he := IsHTTPError(err)
	require.NotNil(t, he)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "Vous avez déjà postulé", ServerMessage(err, "fallback"))
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClient_SuccessFalseIsDomainError(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"Réservation déjà confirmée"}`)
	})

	_, err := c.ValidateReservation(context.Background(), "3")
	de := IsDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "Réservation déjà confirmée", UserMessage(err, "Une erreur est survenue"))
}

func TestClient_DomainErrorWithoutMessageFallsBack(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	_, err := c.CancelPending(context.Background(), "3")
	require.NotNil(t, IsDomainError(err))
	assert.Equal(t, "Une erreur est survenue", UserMessage(err, "Une erreur est survenue"))
}

func TestClient_ValidateReturnsServerMessage(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reservation/5/valider", r.URL.Path)
		io.WriteString(w, `{"success":"Réservation validée"}`)
	})

	msg, err := c.ValidateReservation(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "Réservation validée", msg)
}

func TestClient_ApplyExpectsCreated(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusCreated)
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dispo demain", body["comment"])
		w.WriteHeader(int(status.Load()))
	})

	require.NoError(t, c.Apply(context.Background(), "9", "dispo demain"))

	status.Store(http.StatusOK)
	err := c.Apply(context.Background(), "9", "dispo demain")
	var ue *UnexpectedStatusError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusOK, ue.Status)
}

func TestClient_LoginIsPublicAndStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `{"success":true,"token":"abc","roles":["ROLE_PRESTATAIRE"]}`)
	}))
	defer srv.Close()

	s := NewSession(nil)
	c := New(srv.URL, s)
	resp, err := c.Login(context.Background(), "p@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{RoleProvider}, resp.Roles)

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
	assert.True(t, s.HasRole(RoleProvider))
}

func TestClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false}`)
	}))
	defer srv.Close()

	s := NewSession(nil)
	_, err := New(srv.URL, s).Login(context.Background(), "x", "y")
	require.NotNil(t, IsDomainError(err))
	_, err = s.Token()
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_UploadVideoMultipart(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, fh, err := r.FormFile("filePath")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "frames", string(b))
		assert.Equal(t, "video/quicktime", fh.Header.Get("Content-Type"))
		assert.True(t, strings.HasSuffix(fh.Filename, ".mov"))
		io.WriteString(w, `{"filePath":"video-1.mov"}`)
	})

	v, err := c.UploadVideo(context.Background(), "4", "clip.MOV", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, "video-1.mov", v.FilePath)
}

func TestClient_ReceiptIsPublicBlob(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-receipt/12", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.4")
	})

	doc, err := c.Receipt(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "receipt_12.pdf", doc.Name)
	assert.Equal(t, "%PDF-1.4", string(doc.Data))
}

func TestClient_HostDashboardQuery(t *testing.T) {
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8", r.URL.Query().Get("logementId"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.False(t, r.URL.Query().Has("endDate"))
		io.WriteString(w, `{"reservationsStats":[],"logements":[{"id":8,"nom":"Studio"}],"logementsData":[]}`)
	})

	d, err := c.HostDashboard(context.Background(), DashboardFilter{LogementID: "8", StartDate: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, d.Logements, 1)
	assert.Equal(t, "Studio", d.Logements[0].Nom)
}

func TestClient_ChangePasswordMismatchSendsNothing(t *testing.T) {
	var hits int32
	c := signedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	err := c.ChangePassword(context.Background(), "old", "new1", "new2")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestID_AcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":17,"b":"x-9","c":null}`), &v))
	assert.Equal(t, ID("17"), v.A)
	assert.Equal(t, ID("x-9"), v.B)
	assert.Equal(t, ID(""), v.C)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":17,"b":"x-9","c":""}`, string(out))
}
