package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"cravesmart-backend/repository"
	"cravesmart-backend/service"
	"cravesmart-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubGenerator struct {
	response string
	calls    int
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, prompt string, image *service.ImageInput) (string, error) {
	s.calls++
	return s.response, nil
}

const stubPlan = `{
	"detectedMealName": "N/A",
	"estimatedCalories": 0,
	"macros": {"protein": 0, "carbs": 0, "fats": 0},
	"dailyPlan": [
		{"mealTime": "Breakfast", "options": [
			{"optionName": "A", "foodItems": "Oats", "calories": 300, "protein": 12},
			{"optionName": "B", "foodItems": "Idli sambar", "calories": "350 kcal", "protein": "11g"}
		]},
		{"mealTime": "Lunch", "options": [
			{"optionName": "A", "foodItems": "Rajma rice", "calories": 0}
		]}
	],
	"coachSummary": "Good plan."
}`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *stubGenerator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	gen := &stubGenerator{response: stubPlan}
	r := NewRouter(RouterDeps{
		AccountService: service.NewAccountService(
			service.AccountWithStore(repository.NewDocumentAccountRepository(store)),
			service.AccountWithPasswordCost(bcrypt.MinCost),
		),
		AnalysisService: service.NewAnalysisService(service.AnalysisWithGenerator(gen)),
		Themes:          repository.NewThemeRepository(store),
		Sessions:        service.NewSessionStore(time.Hour),
		Tokens:          service.NewTokenIssuer("test-secret"),
		MaxImageSize:    1024,
	})
	return r, gen
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(t, r, req)
}

func doMultipart(t *testing.T, r *gin.Engine, path, token string, fields map[string]string, image []byte, mimeType string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="meal.jpg"`)
		h.Set("Content-Type", mimeType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return serve(t, r, req)
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (int, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func signup(t *testing.T, r *gin.Engine) string {
	t.Helper()

	status, env := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "asha", Email: "asha@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	require.Equal(t, http.StatusCreated, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	r, _ := setupRouter(t)
	token := signup(t, r)

	status, env := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "asha", Password: "x", ConfirmPassword: "x",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already exists.", env.Error.Message)

	status, env = doJSON(t, r, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "ravi", Password: "a", ConfirmPassword: "b",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "PASSWORD_MISMATCH", env.Error.Code)

	status, env = doJSON(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{Login: "asha", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username or password.", env.Error.Message)

	status, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{Login: "asha@example.com", Password: "pw"})
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"asha"`)
	assert.NotContains(t, string(env.Data), "pw")

	status, _ = doJSON(t, r, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "SESSION_EXPIRED", env.Error.Code)
}

func TestRequireSession(t *testing.T) {
	r, _ := setupRouter(t)

	status, env := doJSON(t, r, http.MethodGet, "/api/profiles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = doJSON(t, r, http.MethodGet, "/api/profiles", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)
}

func TestAnalyzeWithoutImageIsRejected(t *testing.T) {
	r, gen := setupRouter(t)
	token := signup(t, r)

	status, env := doMultipart(t, r, "/api/analyze", token, map[string]string{"plan_type": "analyze"}, nil, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "IMAGE_REQUIRED", env.Error.Code)
	assert.Equal(t, "Please upload a meal photo to analyze.", env.Error.Message)
	assert.Equal(t, 0, gen.calls)
}

func TestAnalyzeImageChecks(t *testing.T) {
	r, gen := setupRouter(t)
	token := signup(t, r)

	status, env := doMultipart(t, r, "/api/analyze", token, nil, []byte("%PDF"), "application/pdf")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_FILE_TYPE", env.Error.Code)

	status, env = doMultipart(t, r, "/api/analyze", token, nil, bytes.Repeat([]byte{0xff}, 2048), "image/jpeg")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)

	status, _ = doMultipart(t, r, "/api/analyze", token, nil, []byte{0xff, 0xd8}, "image/jpeg")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, gen.calls)
}

func TestFullDayPlanAndCycling(t *testing.T) {
	r, gen := setupRouter(t)
	token := signup(t, r)

	status, env := doJSON(t, r, http.MethodGet, "/api/analysis", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NO_ANALYSIS", env.Error.Code)

	status, env = doMultipart(t, r, "/api/analyze", token, map[string]string{
		"plan_type":     "full_day",
		"meals_per_day": "2",
		"profile":       `{"dietType": "Vegetarian", "country": "USA"}`,
	}, nil, "")
	require.Equal(t, http.StatusOK, status, env.Error.Message)
	assert.Equal(t, 1, gen.calls)

	var view service.AnalysisView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, []int{0, 0}, view.SelectedOptions)
	assert.Equal(t, "300 kcal", view.TotalsDisplay.Calories)

	status, env = doJSON(t, r, http.MethodPost, "/api/analysis/slots/0/cycle", token, CycleRequest{Direction: service.DirectionNext})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, []int{1, 0}, view.SelectedOptions)
	assert.Equal(t, 350.0, view.Totals.Calories)

	status, env = doJSON(t, r, http.MethodPost, "/api/analysis/slots/5/cycle", token, CycleRequest{Direction: service.DirectionNext})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SLOT_OUT_OF_RANGE", env.Error.Code)

	status, env = doJSON(t, r, http.MethodPost, "/api/analysis/slots/0/cycle", token, CycleRequest{Direction: "up"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_DIRECTION", env.Error.Code)

	status, _ = doJSON(t, r, http.MethodDelete, "/api/analysis", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, r, http.MethodPost, "/api/analysis/slots/0/cycle", token, CycleRequest{Direction: service.DirectionNext})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NO_PLAN", env.Error.Code)
}

func TestAnalyzeInvalidParameters(t *testing.T) {
	r, gen := setupRouter(t)
	token := signup(t, r)

	status, env := doMultipart(t, r, "/api/analyze", token, map[string]string{"plan_type": "full_day", "meals_per_day": "7"}, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_MEALS_PER_DAY", env.Error.Code)

	status, env = doMultipart(t, r, "/api/analyze", token, map[string]string{"plan_type": "weekly"}, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PLAN_TYPE", env.Error.Code)

	status, env = doMultipart(t, r, "/api/analyze", token, map[string]string{"plan_type": "full_day", "profile": `{"gender": "Robot"}`}, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PROFILE", env.Error.Code)

	status, env = doMultipart(t, r, "/api/analyze", token, map[string]string{"plan_type": "full_day", "profile_id": "not-a-uuid"}, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	assert.Equal(t, 0, gen.calls)
}

func TestProfileEndpoints(t *testing.T) {
	r, _ := setupRouter(t)
	token := signup(t, r)

	status, env := doJSON(t, r, http.MethodGet, "/api/profiles/defaults", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Vegetarian + Eggs")

	status, env = doJSON(t, r, http.MethodPost, "/api/profiles", token, map[string]interface{}{
		"profile_name": "",
		"profile":      map[string]interface{}{"dietType": "Vegetarian"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "PROFILE_NAME_REQUIRED", env.Error.Code)

	status, env = doJSON(t, r, http.MethodPost, "/api/profiles", token, map[string]interface{}{
		"profile_name": "Veg cut",
		"profile": map[string]interface{}{
			"age": 30, "gender": "Female", "height": 160, "weight": 58,
			"activityLevel": "Light (exercise 1-3 times/week)",
			"goal":          "Cutting (Lose Fat)",
			"dietType":      "Vegetarian",
			"country":       "India",
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Error.Message)

	var saved struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))

	status, _ = doJSON(t, r, http.MethodGet, "/api/profiles/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doMultipart(t, r, "/api/analyze", token, map[string]string{
		"plan_type":  "full_day",
		"profile_id": saved.ID,
	}, nil, "")
	assert.Equal(t, http.StatusOK, status, env.Error.Message)

	status, _ = doJSON(t, r, http.MethodDelete, "/api/profiles/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, r, http.MethodGet, "/api/profiles/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PROFILE_NOT_FOUND", env.Error.Code)

	status, env = doJSON(t, r, http.MethodGet, "/api/profiles/nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}

func TestThemeEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	status, env := doJSON(t, r, http.MethodGet, "/api/theme", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"theme":"light"}`, string(env.Data))

	status, _ = doJSON(t, r, http.MethodPut, "/api/theme", "", map[string]string{"theme": "dark"})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := signup(t, r)
	status, _ = doJSON(t, r, http.MethodPut, "/api/theme", token, map[string]string{"theme": "dark"})
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, r, http.MethodGet, "/api/theme", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"theme":"dark"}`, string(env.Data))

	status, env = doJSON(t, r, http.MethodPut, "/api/theme", token, map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_THEME", env.Error.Code)
}
