package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/seb_proctor/internal/models"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims Claims) string {
	t.Helper()
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func newEngine(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthMiddleware(AuthConfig{JWTSecret: secret}), RequireRoles(roles...), func(c *gin.Context) {
		caller, _ := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": caller.ID, "role": caller.Role})
	})
	return r
}

func do(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(RoleSiswa)
	uid := uuid.NewString()
	want, err := models.ParseUserID(uid)
	require.NoError(t, err)

	w := do(r, "Bearer "+sign(t, secret, Claims{UserID: uid, Role: "Siswa"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"`+want.String()+`","role":"siswa"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer "+sign(t, "other", Claims{UserID: uid, Role: RoleSiswa})).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer "+sign(t, secret, Claims{UserID: "nope", Role: RoleSiswa})).Code)
}

func TestRequireRoles(t *testing.T) {
	r := newEngine(RolePengawas)
	uid := uuid.NewString()

	assert.Equal(t, http.StatusOK, do(r, "Bearer "+sign(t, secret, Claims{UserID: uid, Role: RolePengawas})).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+sign(t, secret, Claims{UserID: uid, Role: RoleAdmin})).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+sign(t, secret, Claims{UserID: uid, Role: RoleSiswa})).Code)
}
