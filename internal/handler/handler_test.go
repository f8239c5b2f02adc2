package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinemax/internal/config"
	"github.com/user/cinemax/internal/handler"
	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/router"
	"github.com/user/cinemax/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminKey = "test-admin-key"

type testEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
}

// newTestEnv 完整路由 + 内存库 + 指向 tmdbURL 的元数据客户端
func newTestEnv(t *testing.T, tmdbURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitCache()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	repos := repository.NewRepositories(db)
	cfg := &config.Config{
		Env:         "test",
		AppSecret:   "test-secret",
		JWTExpiry:   time.Hour,
		BcryptCost:  bcrypt.MinCost,
		AdminKey:    testAdminKey,
		TMDBBaseURL: tmdbURL,
	}

	r := gin.New()
	router.RegisterRoutes(r, handler.NewHandler(repos, cfg), cfg)
	return &testEnv{router: r, repos: repos}
}

// deadStub 已关闭的元数据服务地址，所有外部请求都失败
func deadStub(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doAdmin(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", testAdminKey)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup 注册并返回 Token
func (e *testEnv) signup(t *testing.T, username string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/signup", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, 201, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (e *testEnv) seedMovie(t *testing.T, title string) *model.Movie {
	t.Helper()
	movie := &model.Movie{Title: title}
	require.NoError(t, e.repos.Movie.Create(movie))
	return movie
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, 200, w.Code)
}

func TestSignupFlow(t *testing.T) {
	env := newTestEnv(t, deadStub(t))

	w := env.do(http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice Zhang",
	})
	assert.Equal(t, 201, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	// 密码哈希不出现在响应中
	assert.NotContains(t, w.Body.String(), "password_hash")

	// 重复用户名
	w = env.do(http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	assert.Equal(t, 409, w.Code)

	// 重复邮箱
	w = env.do(http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	assert.Equal(t, 409, w.Code)

	// 非法邮箱
	w = env.do(http.MethodPost, "/auth/signup", "", gin.H{
		"username": "bob",
		"email":    "not-an-email",
		"password": "password123",
		"name":     "Bob",
	})
	assert.Equal(t, 400, w.Code)
}

func TestSigninFlow(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	env.signup(t, "alice")

	w := env.do(http.MethodPost, "/auth/signin", "", gin.H{
		"identifier": "alice@example.com",
		"password":   "password123",
	})
	assert.Equal(t, 200, w.Code)

	w = env.do(http.MethodPost, "/auth/signin", "", gin.H{
		"identifier": "alice",
		"password":   "wrong-password",
	})
	assert.Equal(t, 400, w.Code)
}

func TestAdminLoginFlow(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	env.signup(t, "root")

	user, err := env.repos.User.FindByUsername("root")
	require.NoError(t, err)
	require.NoError(t, env.repos.User.UpdateRole(user.ID, model.RoleAdmin))

	// 密码错误返回 400，且不写入会话行
	w := env.do(http.MethodPost, "/auth/admin/login", "", gin.H{
		"username": "root",
		"password": "wrong-password",
	})
	assert.Equal(t, 400, w.Code)

	var count int64
	require.NoError(t, env.repos.DB.Model(&model.AdminSession{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// 登录成功后 Token 可通过校验
	w = env.do(http.MethodPost, "/auth/admin/login", "", gin.H{
		"username": "root",
		"password": "password123",
	})
	require.Equal(t, 200, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = env.do(http.MethodGet, "/auth/admin/verify", resp.Data.Token, nil)
	assert.Equal(t, 200, w.Code)

	// 登出后校验失败，重复登出仍返回成功
	w = env.do(http.MethodPost, "/auth/signout", resp.Data.Token, nil)
	assert.Equal(t, 200, w.Code)
	w = env.do(http.MethodPost, "/auth/signout", resp.Data.Token, nil)
	assert.Equal(t, 200, w.Code)

	w = env.do(http.MethodGet, "/auth/admin/verify", resp.Data.Token, nil)
	assert.Equal(t, 401, w.Code)
}

func TestGetMovieNotFound(t *testing.T) {
	env := newTestEnv(t, deadStub(t))

	w := env.do(http.MethodGet, "/movies/999999", "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestGetMovieFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id": 603, "title": "The Matrix", "vote_count": 25000}`)
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)

	w := env.do(http.MethodGet, "/movies/603", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "The Matrix")
}

func TestListMovies(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	env.seedMovie(t, "Inception")
	env.seedMovie(t, "Interstellar")

	w := env.do(http.MethodGet, "/movies?page=1&limit=10", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
}

func TestFavoriteFlow(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	path := fmt.Sprintf("/users/favorites/%d", movie.ID)

	// 未登录
	w := env.do(http.MethodPost, path, "", nil)
	assert.Equal(t, 401, w.Code)

	// 收藏成功
	w = env.do(http.MethodPost, path, token, nil)
	assert.Equal(t, 201, w.Code)

	// 重复收藏
	w = env.do(http.MethodPost, path, token, nil)
	assert.Equal(t, 409, w.Code)

	// 收藏不存在的电影
	w = env.do(http.MethodPost, "/users/favorites/999999", token, nil)
	assert.Equal(t, 404, w.Code)

	// 列表包含刚收藏的电影
	w = env.do(http.MethodGet, "/users/favorites", token, nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Inception")

	// 取消收藏幂等
	w = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, 200, w.Code)
	w = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, 200, w.Code)
}

func TestReviewFlow(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	path := fmt.Sprintf("/users/reviews/%d", movie.ID)

	// 评分超出范围，不写入任何行
	w := env.do(http.MethodPost, path, token, gin.H{"rating": 11, "comment": "超纲"})
	assert.Equal(t, 400, w.Code)

	w = env.do(http.MethodPost, path, token, gin.H{"rating": 0})
	assert.Equal(t, 400, w.Code)

	count, err := env.repos.Review.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// 正常发表
	w = env.do(http.MethodPost, path, token, gin.H{"rating": 8, "comment": "不错"})
	assert.Equal(t, 201, w.Code)

	// 同一电影第二条影评
	w = env.do(http.MethodPost, path, token, gin.H{"rating": 5})
	assert.Equal(t, 409, w.Code)

	// 修改影评
	w = env.do(http.MethodPut, path, token, gin.H{"rating": 9, "comment": "改观了"})
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"rating":9`)

	// 修改不存在的影评
	w = env.do(http.MethodPut, "/users/reviews/999999", token, gin.H{"rating": 5})
	assert.Equal(t, 404, w.Code)

	// 电影的评论列表
	w = env.do(http.MethodGet, fmt.Sprintf("/movies/%d/reviews", movie.ID), "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "改观了")

	// 删除影评，再删返回 404
	w = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, 200, w.Code)
	w = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, 404, w.Code)
}

func TestWatchlistAndHistory(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	w := env.do(http.MethodPost, fmt.Sprintf("/users/watchlist/%d", movie.ID), token, nil)
	assert.Equal(t, 201, w.Code)
	w = env.do(http.MethodPost, fmt.Sprintf("/users/watchlist/%d", movie.ID), token, nil)
	assert.Equal(t, 409, w.Code)

	w = env.do(http.MethodGet, "/users/watchlist", token, nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Inception")

	// 观影进度只保留最新一条
	w = env.do(http.MethodPost, fmt.Sprintf("/users/history/%d", movie.ID), token, gin.H{"progress": 30})
	assert.Equal(t, 200, w.Code)
	w = env.do(http.MethodPost, fmt.Sprintf("/users/history/%d", movie.ID), token, gin.H{"progress": 95})
	assert.Equal(t, 200, w.Code)

	w = env.do(http.MethodGet, "/users/history", token, nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"progress":95`)
	assert.NotContains(t, w.Body.String(), `"progress":30`)
}

func TestAdminGuard(t *testing.T) {
	env := newTestEnv(t, deadStub(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("x-admin-key", "wrong-key")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	env.signup(t, "alice")

	user, err := env.repos.User.FindByUsername("alice")
	require.NoError(t, err)

	// 修改角色
	w := env.doAdmin(http.MethodPut, fmt.Sprintf("/admin/users/%d/role", user.ID), gin.H{"role": "moderator"})
	assert.Equal(t, 200, w.Code)

	got, err := env.repos.User.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, got.Role)

	// 非法角色
	w = env.doAdmin(http.MethodPut, fmt.Sprintf("/admin/users/%d/role", user.ID), gin.H{"role": "superuser"})
	assert.Equal(t, 400, w.Code)

	// 停用
	w = env.doAdmin(http.MethodPut, fmt.Sprintf("/admin/users/%d/status", user.ID), gin.H{"is_active": false})
	assert.Equal(t, 200, w.Code)

	got, err = env.repos.User.FindByID(user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// 用户列表
	w = env.doAdmin(http.MethodGet, "/admin/users", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAdminDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	w := env.do(http.MethodPost, fmt.Sprintf("/users/favorites/%d", movie.ID), token, nil)
	require.Equal(t, 201, w.Code)
	w = env.do(http.MethodPost, fmt.Sprintf("/users/reviews/%d", movie.ID), token, gin.H{"rating": 8})
	require.Equal(t, 201, w.Code)

	user, err := env.repos.User.FindByUsername("alice")
	require.NoError(t, err)

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/admin/users/%d", user.ID), nil)
	assert.Equal(t, 200, w.Code)

	// 互动数据随用户一并删除
	favCount, err := env.repos.Favorite.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, favCount)

	reviewCount, err := env.repos.Review.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, reviewCount)

	// 删除不存在的用户
	w = env.doAdmin(http.MethodDelete, "/admin/users/999999", nil)
	assert.Equal(t, 404, w.Code)
}

func TestAdminMovieManagement(t *testing.T) {
	env := newTestEnv(t, deadStub(t))

	// 创建
	w := env.doAdmin(http.MethodPost, "/admin/movies", gin.H{
		"title":  "Local Indie Film",
		"status": "draft",
	})
	require.Equal(t, 201, w.Code)

	var resp struct {
		Data model.Movie `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.ID)

	// 草稿不出现在公开列表
	w = env.do(http.MethodGet, "/movies", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.NotContains(t, w.Body.String(), "Local Indie Film")

	// 后台列表包含草稿
	w = env.doAdmin(http.MethodGet, "/admin/movies", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Local Indie Film")

	// 更新为已发布
	w = env.doAdmin(http.MethodPut, fmt.Sprintf("/admin/movies/%d", resp.Data.ID), gin.H{
		"title":  "Local Indie Film",
		"status": "published",
	})
	assert.Equal(t, 200, w.Code)

	w = env.do(http.MethodGet, "/movies", "", nil)
	assert.Contains(t, w.Body.String(), "Local Indie Film")

	// 删除
	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/admin/movies/%d", resp.Data.ID), nil)
	assert.Equal(t, 200, w.Code)

	gone, err := env.repos.Movie.FindByID(resp.Data.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAdminDeleteMovieCascades(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	w := env.do(http.MethodPost, fmt.Sprintf("/users/favorites/%d", movie.ID), token, nil)
	require.Equal(t, 201, w.Code)

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/admin/movies/%d", movie.ID), nil)
	assert.Equal(t, 200, w.Code)

	favCount, err := env.repos.Favorite.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, favCount)
}

func TestAdminImportMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id": 603, "title": "The Matrix"}`)
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)

	w := env.doAdmin(http.MethodPost, "/admin/movies/import/603", nil)
	assert.Equal(t, 201, w.Code)
	assert.Contains(t, w.Body.String(), "The Matrix")

	// 外部接口报错时原样返回给管理端
	w = env.doAdmin(http.MethodPost, "/admin/movies/import/999999", nil)
	assert.Equal(t, 502, w.Code)
}

func TestAdminAnalytics(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	movie := env.seedMovie(t, "Inception")

	w := env.do(http.MethodPost, fmt.Sprintf("/users/favorites/%d", movie.ID), token, nil)
	require.Equal(t, 201, w.Code)

	w = env.doAdmin(http.MethodGet, "/admin/analytics", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"users":1`)
	assert.Contains(t, w.Body.String(), `"movies":1`)
	assert.Contains(t, w.Body.String(), `"favorites":1`)
	assert.Contains(t, w.Body.String(), "top_favorited")
}

func TestAdminSettings(t *testing.T) {
	env := newTestEnv(t, deadStub(t))

	w := env.doAdmin(http.MethodPut, "/admin/settings", gin.H{"key": "site_name", "value": "CinemaMax"})
	assert.Equal(t, 200, w.Code)

	// 覆盖写入
	w = env.doAdmin(http.MethodPut, "/admin/settings", gin.H{"key": "site_name", "value": "CinemaMax Pro"})
	assert.Equal(t, 200, w.Code)

	w = env.doAdmin(http.MethodGet, "/admin/settings", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "CinemaMax Pro")

	// 删除幂等
	w = env.doAdmin(http.MethodDelete, "/admin/settings/site_name", nil)
	assert.Equal(t, 200, w.Code)
	w = env.doAdmin(http.MethodDelete, "/admin/settings/site_name", nil)
	assert.Equal(t, 200, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")
	env.signup(t, "bob")

	// 改名
	w := env.do(http.MethodPut, "/users/profile", token, gin.H{"name": "Alice Wang"})
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Wang")

	// 占用他人邮箱
	w = env.do(http.MethodPut, "/users/profile", token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, 409, w.Code)

	// 改自己的邮箱
	w = env.do(http.MethodPut, "/users/profile", token, gin.H{"email": "alice.new@example.com"})
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "alice.new@example.com")
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, deadStub(t))
	token := env.signup(t, "alice")

	w := env.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	w = env.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, 401, w.Code)
}
