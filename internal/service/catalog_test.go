package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestMovieRepo(t *testing.T) *repository.MovieRepository {
	t.Helper()
	utils.InitCache()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return repository.NewMovieRepository(db)
}

// stubTMDB 指向本地 httptest 服务的客户端
func stubTMDB(srv *httptest.Server) *TMDBClient {
	return NewTMDBClient("", srv.URL)
}

// deadTMDB 指向一个已关闭的服务，所有请求都失败
func deadTMDB(t *testing.T) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return stubTMDB(srv)
}

func TestGetMovieLocalHit(t *testing.T) {
	repo := newTestMovieRepo(t)
	movie := &model.Movie{Title: "Inception"}
	require.NoError(t, repo.Create(movie))

	// 本地命中时完全不触发外部请求
	svc := NewCatalogService(repo, deadTMDB(t))
	stats, err := svc.GetMovie(movie.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, "Inception", stats.Title)
}

func TestGetMovieProviderDown(t *testing.T) {
	repo := newTestMovieRepo(t)
	svc := NewCatalogService(repo, deadTMDB(t))

	// 本地未命中且外部不可达，降级为未找到
	_, err := svc.GetMovie(999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMovieFallbackImports(t *testing.T) {
	repo := newTestMovieRepo(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"id": 603,
			"title": "The Matrix",
			"overview": "A hacker discovers reality is a simulation.",
			"release_date": "1999-03-30",
			"runtime": 136,
			"vote_average": 8.2,
			"vote_count": 25000,
			"genres": [{"id": 878, "name": "Science Fiction"}],
			"credits": {
				"cast": [{"name": "Keanu Reeves", "order": 0}],
				"crew": [{"name": "Lana Wachowski", "job": "Director"}]
			}
		}`)
	}))
	defer srv.Close()

	svc := NewCatalogService(repo, stubTMDB(srv))

	stats, err := svc.GetMovie(603)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, "The Matrix", stats.Title)
	assert.Equal(t, "Lana Wachowski", stats.Director)
	assert.Equal(t, "Keanu Reeves", stats.Cast)
	assert.Contains(t, stats.Genres, "Science Fiction")

	// 回退结果已写回本地库
	local, err := repo.FindByTMDBID(603)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, model.MovieStatusPublished, local.Status)

	// 第二次查询走本地，不再访问外部
	svc2 := NewCatalogService(repo, deadTMDB(t))
	stats, err = svc2.GetMovie(local.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", stats.Title)
}

func TestSearchLocalFirst(t *testing.T) {
	repo := newTestMovieRepo(t)
	require.NoError(t, repo.Create(&model.Movie{Title: "Inception"}))

	// 本地有结果时不触发外部请求
	svc := NewCatalogService(repo, deadTMDB(t))
	movies, err := svc.Search("inception")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
}

func TestSearchFallbackFailSoft(t *testing.T) {
	repo := newTestMovieRepo(t)
	svc := NewCatalogService(repo, deadTMDB(t))

	// 本地无结果且外部失败，返回空集而非错误
	movies, err := svc.Search("nonexistent")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestSearchFallbackImports(t *testing.T) {
	repo := newTestMovieRepo(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"page": 1,
			"results": [{
				"id": 27205,
				"title": "Inception",
				"vote_count": 30000,
				"genre_ids": [878, 28]
			}]
		}`)
	}))
	defer srv.Close()

	svc := NewCatalogService(repo, stubTMDB(srv))

	movies, err := svc.Search("inception")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
	// 重查本地拿到带 ID 的行
	assert.NotZero(t, movies[0].ID)

	local, err := repo.FindByTMDBID(27205)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Contains(t, local.Genres, "Science Fiction")
}

func TestSearchEmptyKeyword(t *testing.T) {
	repo := newTestMovieRepo(t)
	svc := NewCatalogService(repo, deadTMDB(t))

	movies, err := svc.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestImportMovieSurfacesErrors(t *testing.T) {
	repo := newTestMovieRepo(t)
	svc := NewCatalogService(repo, deadTMDB(t))

	// 管理端导入不做降级，错误原样返回
	_, err := svc.ImportMovie(603)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPopularFallsBackWhenLocalEmpty(t *testing.T) {
	repo := newTestMovieRepo(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"page": 1,
			"results": [
				{"id": 1, "title": "Movie A", "vote_count": 500},
				{"id": 2, "title": "Movie B", "vote_count": 300}
			]
		}`)
	}))
	defer srv.Close()

	svc := NewCatalogService(repo, stubTMDB(srv))

	movies, err := svc.Popular()
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestByGenreUnknownID(t *testing.T) {
	repo := newTestMovieRepo(t)
	svc := NewCatalogService(repo, deadTMDB(t))

	movies, err := svc.ByGenre(123456)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestGenreName(t *testing.T) {
	c := NewTMDBClient("", "")
	assert.Equal(t, "Action", c.GenreName(28))
	assert.Equal(t, "Science Fiction", c.GenreName(878))
	assert.Empty(t, c.GenreName(0))
}
