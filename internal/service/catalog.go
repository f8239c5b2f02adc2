package service

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/repository"
	"github.com/user/cinemax/internal/utils"
	"golang.org/x/sync/singleflight"
)

// CatalogService 影库查询服务
// 查询顺序：本地数据库优先，本地为空时回退 TMDB 并把结果写回库
// （旁路缓存，电影数据以追加为主，接受无上限的陈旧度）
// 外部接口的任何错误都不向调用方传播，降级为空结果
type CatalogService struct {
	movieRepo   *repository.MovieRepository
	tmdb        *TMDBClient
	sf          singleflight.Group
	searchCache *utils.SearchCache[[]model.Movie]
}

// NewCatalogService 创建影库查询服务
func NewCatalogService(movieRepo *repository.MovieRepository, tmdb *TMDBClient) *CatalogService {
	return &CatalogService{
		movieRepo:   movieRepo,
		tmdb:        tmdb,
		searchCache: utils.NewSearchCache[[]model.Movie](500, 30*time.Minute),
	}
}

// GetMovies 分页获取已发布电影（带查询时聚合统计）
func (s *CatalogService) GetMovies(page, limit int) ([]model.MovieStats, int64, error) {
	offset := (page - 1) * limit
	movies, err := s.movieRepo.ListPublished(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movieRepo.CountPublished()
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// GetMovie 获取电影详情：本地命中直接返回，未命中把 id 当作 TMDB ID 抓取并导入
// 本地和外部都未命中才返回 ErrNotFound
func (s *CatalogService) GetMovie(id int) (*model.MovieStats, error) {
	stats, err := s.movieRepo.FindStatsByID(id)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return stats, nil
	}

	// 同一个 TMDB ID 可能早已导入为不同的本地 ID
	if movie, err := s.movieRepo.FindByTMDBID(id); err == nil && movie != nil {
		return s.movieRepo.FindStatsByID(movie.ID)
	}

	// 回退外部接口，singleflight 避免并发重复抓取
	val, err, _ := s.sf.Do("movie:"+strconv.Itoa(id), func() (interface{}, error) {
		fetched, err := s.tmdb.GetMovie(id)
		if err != nil {
			return nil, err
		}
		if err := s.movieRepo.Upsert(fetched); err != nil {
			return nil, err
		}
		return s.movieRepo.FindByTMDBID(id)
	})
	if err != nil {
		log.Printf("[Catalog] TMDB 回退失败 (ID: %d): %v", id, err)
		return nil, ErrNotFound
	}

	movie, ok := val.(*model.Movie)
	if !ok || movie == nil {
		return nil, ErrNotFound
	}
	return s.movieRepo.FindStatsByID(movie.ID)
}

// ImportMovie 管理端按 TMDB ID 导入电影，外部错误原样返回
func (s *CatalogService) ImportMovie(tmdbID int) (*model.Movie, error) {
	fetched, err := s.tmdb.GetMovie(tmdbID)
	if err != nil {
		return nil, err
	}
	if err := s.movieRepo.Upsert(fetched); err != nil {
		return nil, err
	}
	return s.movieRepo.FindByTMDBID(tmdbID)
}

// Search 搜索电影：LRU 缓存 → 本地库 → TMDB 回退
func (s *CatalogService) Search(keyword string) ([]model.Movie, error) {
	key := strings.ToLower(strings.TrimSpace(keyword))
	if key == "" {
		return []model.Movie{}, nil
	}

	if cached, found := s.searchCache.Get(key); found {
		return cached, nil
	}

	movies, err := s.movieRepo.Search(keyword, 50)
	if err != nil {
		return nil, err
	}

	if len(movies) == 0 {
		movies = s.fallback("search:"+key, func() ([]model.Movie, error) {
			return s.tmdb.Search(keyword)
		})
		// 导入后重查本地，拿到带 ID 的行
		if len(movies) > 0 {
			if local, err := s.movieRepo.Search(keyword, 50); err == nil && len(local) > 0 {
				movies = local
			}
		}
	}

	s.searchCache.Set(key, movies)
	return movies, nil
}

// Popular 热门电影：本地投票数排序，本地为空回退 TMDB
func (s *CatalogService) Popular() ([]model.Movie, error) {
	const cacheKey = "catalog:popular"
	if cached, found := utils.CacheGet(cacheKey); found {
		if movies, ok := cached.([]model.Movie); ok {
			return movies, nil
		}
	}

	movies, err := s.movieRepo.ListPopular(20)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		s.fallback("popular", s.tmdb.Popular)
		movies, _ = s.movieRepo.ListPopular(20)
	}

	utils.CacheSet(cacheKey, movies, 1*time.Hour)
	return movies, nil
}

// Trending 趋势电影：按最近 7 天收藏数排序，本地为空回退 TMDB
func (s *CatalogService) Trending() ([]model.Movie, error) {
	const cacheKey = "catalog:trending"
	if cached, found := utils.CacheGet(cacheKey); found {
		if movies, ok := cached.([]model.Movie); ok {
			return movies, nil
		}
	}

	since := time.Now().AddDate(0, 0, -7)
	movies, err := s.movieRepo.ListTrending(since, 20)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		s.fallback("trending", s.tmdb.Trending)
		movies, _ = s.movieRepo.ListTrending(since, 20)
	}

	utils.CacheSet(cacheKey, movies, 1*time.Hour)
	return movies, nil
}

// ByGenre 按类型获取电影：本地类型子串匹配，本地为空回退 TMDB 发现接口
func (s *CatalogService) ByGenre(genreID int) ([]model.Movie, error) {
	name := s.tmdb.GenreName(genreID)
	if name == "" {
		return []model.Movie{}, nil
	}

	movies, err := s.movieRepo.ListByGenre(name, 20)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		s.fallback("genre:"+strconv.Itoa(genreID), func() ([]model.Movie, error) {
			return s.tmdb.DiscoverByGenre(genreID)
		})
		movies, _ = s.movieRepo.ListByGenre(name, 20)
	}

	return movies, nil
}

// fallback 执行外部抓取并写回本地库，失败只记日志并返回空集
func (s *CatalogService) fallback(key string, fetch func() ([]model.Movie, error)) []model.Movie {
	val, err, _ := s.sf.Do(key, func() (interface{}, error) {
		movies, err := fetch()
		if err != nil {
			return nil, err
		}
		for i := range movies {
			if err := s.movieRepo.Upsert(&movies[i]); err != nil {
				log.Printf("[Catalog] 写回本地库失败 (TMDB ID: %v): %v", movies[i].TMDBID, err)
			}
		}
		return movies, nil
	})
	if err != nil {
		log.Printf("[Catalog] TMDB 回退失败 (%s): %v", key, err)
		return []model.Movie{}
	}
	movies, _ := val.([]model.Movie)
	return movies
}
