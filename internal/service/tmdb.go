package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/user/cinemax/internal/model"
	"github.com/user/cinemax/internal/utils"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// tmdbGenres TMDB 标准电影类型表
var tmdbGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// TMDBClient TMDB 元数据客户端
type TMDBClient struct {
	baseURL string
	client  *utils.HTTPClient
}

// NewTMDBClient 创建 TMDB 客户端，baseURL 为空时使用官方接口地址
func NewTMDBClient(token, baseURL string) *TMDBClient {
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &TMDBClient{
		baseURL: baseURL,
		client:  utils.NewHTTPClient(10*time.Second, headers),
	}
}

type tmdbListResponse struct {
	Page    int         `json:"page"`
	Results []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int   `json:"genre_ids"` // 列表接口
	Genres       []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"` // 详情接口
	Credits *struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// GetMovie 获取电影详情（含演职员表）
func (c *TMDBClient) GetMovie(tmdbID int) (*model.Movie, error) {
	var result tmdbMovie
	u := fmt.Sprintf("%s/movie/%d?append_to_response=credits", c.baseURL, tmdbID)
	if err := c.client.GetJSON(u, &result); err != nil {
		return nil, err
	}
	if result.ID == 0 {
		return nil, fmt.Errorf("TMDB 无此电影: %d", tmdbID)
	}
	movie := c.toMovie(&result)
	return &movie, nil
}

// Search 按关键词搜索电影
func (c *TMDBClient) Search(keyword string) ([]model.Movie, error) {
	u := fmt.Sprintf("%s/search/movie?query=%s", c.baseURL, url.QueryEscape(keyword))
	return c.getList(u)
}

// Popular 热门电影
func (c *TMDBClient) Popular() ([]model.Movie, error) {
	return c.getList(c.baseURL + "/movie/popular")
}

// Trending 本周趋势电影
func (c *TMDBClient) Trending() ([]model.Movie, error) {
	return c.getList(c.baseURL + "/trending/movie/week")
}

// DiscoverByGenre 按类型发现电影
func (c *TMDBClient) DiscoverByGenre(genreID int) ([]model.Movie, error) {
	u := fmt.Sprintf("%s/discover/movie?with_genres=%d&sort_by=popularity.desc", c.baseURL, genreID)
	return c.getList(u)
}

// GenreName 根据 TMDB 类型 ID 解析类型名（未知返回空）
func (c *TMDBClient) GenreName(genreID int) string {
	return tmdbGenres[genreID]
}

func (c *TMDBClient) getList(u string) ([]model.Movie, error) {
	var result tmdbListResponse
	if err := c.client.GetJSON(u, &result); err != nil {
		return nil, err
	}

	movies := make([]model.Movie, 0, len(result.Results))
	for i := range result.Results {
		movies = append(movies, c.toMovie(&result.Results[i]))
	}
	return movies, nil
}

// toMovie 将 TMDB 响应映射为本地模型
func (c *TMDBClient) toMovie(m *tmdbMovie) model.Movie {
	tmdbID := m.ID

	var genres []string
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}
	for _, id := range m.GenreIDs {
		if name, ok := tmdbGenres[id]; ok {
			genres = append(genres, name)
		}
	}

	var director string
	var cast []string
	if m.Credits != nil {
		for _, crew := range m.Credits.Crew {
			if crew.Job == "Director" {
				director = crew.Name
				break
			}
		}
		for _, member := range m.Credits.Cast {
			cast = append(cast, member.Name)
			if len(cast) >= 10 {
				break
			}
		}
	}

	return model.Movie{
		TMDBID:       &tmdbID,
		Title:        m.Title,
		Overview:     m.Overview,
		ReleaseDate:  m.ReleaseDate,
		Runtime:      m.Runtime,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		Genres:       strings.Join(genres, "/"),
		Director:     director,
		Cast:         strings.Join(cast, ", "),
		Status:       model.MovieStatusPublished,
	}
}
