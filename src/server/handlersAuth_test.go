package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "photoserv/src/app"
	minio_mock "photoserv/src/app/mock"
	cfg "photoserv/src/configuration"
	notify "photoserv/src/notify"
)

func testConfig(t *testing.T, admins ...string) *cfg.Properties {
	t.Helper()
	config := &cfg.Properties{}
	config.Auth.AdminEmails = admins
	config.Auth.SignInPath = "/.auth/login/aad"
	config.Server.StaticDir = t.TempDir()
	return config
}

func newTestRouter(t *testing.T, s3 *app.MinioS3Client, admins ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config := testConfig(t, admins...)
	mail := notify.NewClient("", "", "")
	return NewRouter(config, NewHandler(config, s3, mail))
}

func principalHeader(t *testing.T, claims ...app.Claim) string {
	t.Helper()
	payload, err := json.Marshal(app.Principal{AuthTyp: "aad", Claims: claims})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(payload)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadRedirectsAnonymousCaller(t *testing.T) {
	fake := &minio_mock.FakeClient{}
	router := newTestRouter(t, app.NewMinioS3ClientWith(fake, "photos", ""), "seller@example.com")

	for name, header := range map[string]string{
		"NoHeader":        "",
		"MalformedHeader": "%%%garbage%%%",
	} {
		t.Run(name, func(t *testing.T) {
			req := uploadRequest(t, "photo.jpg", "bytes")
			if header != "" {
				req.Header.Set(clientPrincipalHeader, header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusFound, recorder.Code)
			location := recorder.Header().Get("Location")
			assert.Contains(t, location, "/.auth/login/aad")
			assert.Contains(t, location, "post_login_redirect_uri=")
			assert.Empty(t, fake.Puts, "store must not be touched")
		})
	}
}

func TestUploadForbiddenForSignedInNonAdmin(t *testing.T) {
	fake := &minio_mock.FakeClient{}
	router := newTestRouter(t, app.NewMinioS3ClientWith(fake, "photos", ""), "seller@example.com")

	t.Run("EmailNotOnAllowList", func(t *testing.T) {
		req := uploadRequest(t, "photo.jpg", "bytes")
		req.Header.Set(clientPrincipalHeader,
			principalHeader(t, app.Claim{Typ: "email", Val: "visitor@example.com"}))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code, "header presence alone must never grant admin")
		assert.Empty(t, fake.Puts)
	})

	t.Run("PrincipalWithoutEmailClaim", func(t *testing.T) {
		req := uploadRequest(t, "photo.jpg", "bytes")
		req.Header.Set(clientPrincipalHeader,
			principalHeader(t, app.Claim{Typ: "name", Val: "Somebody"}))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Empty(t, fake.Puts)
	})
}

func TestUploadAllowsAllowListedAdmin(t *testing.T) {
	fake := &minio_mock.FakeClient{}
	router := newTestRouter(t, app.NewMinioS3ClientWith(fake, "photos", "https://cdn.test/photos"),
		"seller@example.com")

	req := uploadRequest(t, "tokyo at night.jpg", "jpegbytes")
	// Case differs from the configured allow-list entry on purpose.
	req.Header.Set(clientPrincipalHeader,
		principalHeader(t, app.Claim{Typ: "emails", Val: "Seller@Example.COM"}))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response struct {
		OK         bool   `json:"ok"`
		UploadedBy string `json:"uploadedBy"`
		Name       string `json:"name"`
		URL        string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.OK)
	assert.Equal(t, "seller@example.com", response.UploadedBy)
	assert.Regexp(t, `^cities/[0-9a-f-]{36}-tokyo-at-night\.jpg$`, response.Name)
	assert.Equal(t, "https://cdn.test/photos/"+response.Name, response.URL)

	require.Len(t, fake.Puts, 1)
	assert.Equal(t, response.Name, fake.Puts[0].Key)
	assert.Equal(t, []byte("jpegbytes"), fake.Puts[0].Body)
}

func TestLoginRoute(t *testing.T) {
	router := newTestRouter(t, nil, "seller@example.com")

	t.Run("AnonymousIsSentToSignIn", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusFound, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Location"), "/.auth/login/aad")
	})

	t.Run("SignedInGoesHome", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.Header.Set(clientPrincipalHeader,
			principalHeader(t, app.Claim{Typ: "email", Val: "anyone@example.com"}))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusFound, recorder.Code)
		assert.Equal(t, "/", recorder.Header().Get("Location"))
	})
}

func TestMeRoute(t *testing.T) {
	router := newTestRouter(t, nil, "seller@example.com")

	t.Run("Anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"authenticated": false}`, recorder.Body.String())
	})

	t.Run("Admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(clientPrincipalHeader,
			principalHeader(t, app.Claim{Typ: "email", Val: "seller@example.com"}))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Authenticated bool   `json:"authenticated"`
			Email         string `json:"email"`
			Admin         bool   `json:"admin"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Authenticated)
		assert.True(t, response.Admin)
		assert.Equal(t, "seller@example.com", response.Email)
	})
}
