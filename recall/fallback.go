package recall

import "github.com/fluffy1211/moviedna/core"

// FallbackMovies 是所有查询都失败时的静态兜底片单：跨类型、跨年代、
// 跨语言的公认佳片，保证引擎永远有东西可推。
func FallbackMovies() []*core.Movie {
	return []*core.Movie{
		{ID: 550, Title: "Fight Club", OriginalLanguage: "en", ReleaseDate: "1999-10-15", GenreIDs: []int{18, 53}, VoteAverage: 8.4, VoteCount: 27000, Popularity: 61.0},
		{ID: 13, Title: "Forrest Gump", OriginalLanguage: "en", ReleaseDate: "1994-06-23", GenreIDs: []int{35, 18, 10749}, VoteAverage: 8.5, VoteCount: 25000, Popularity: 55.0},
		{ID: 27205, Title: "Inception", OriginalLanguage: "en", ReleaseDate: "2010-07-15", GenreIDs: []int{28, 878, 53}, VoteAverage: 8.4, VoteCount: 34000, Popularity: 83.0},
		{ID: 238, Title: "The Godfather", OriginalLanguage: "en", ReleaseDate: "1972-03-14", GenreIDs: []int{18, 80}, VoteAverage: 8.7, VoteCount: 19000, Popularity: 104.0},
		{ID: 19404, Title: "Dilwale Dulhania Le Jayenge", OriginalLanguage: "hi", ReleaseDate: "1995-10-20", GenreIDs: []int{35, 18, 10749}, VoteAverage: 8.6, VoteCount: 4300, Popularity: 25.0},
		{ID: 680, Title: "Pulp Fiction", OriginalLanguage: "en", ReleaseDate: "1994-09-10", GenreIDs: []int{53, 80}, VoteAverage: 8.5, VoteCount: 26000, Popularity: 70.0},
		{ID: 155, Title: "The Dark Knight", OriginalLanguage: "en", ReleaseDate: "2008-07-16", GenreIDs: []int{18, 28, 80, 53}, VoteAverage: 8.5, VoteCount: 31000, Popularity: 91.0},
		{ID: 11216, Title: "Cinema Paradiso", OriginalLanguage: "it", ReleaseDate: "1988-11-17", GenreIDs: []int{18, 10749}, VoteAverage: 8.4, VoteCount: 4000, Popularity: 20.0},
		{ID: 637, Title: "Life Is Beautiful", OriginalLanguage: "it", ReleaseDate: "1997-12-20", GenreIDs: []int{35, 18}, VoteAverage: 8.5, VoteCount: 12000, Popularity: 40.0},
		{ID: 389, Title: "12 Angry Men", OriginalLanguage: "en", ReleaseDate: "1957-04-10", GenreIDs: []int{18}, VoteAverage: 8.5, VoteCount: 8400, Popularity: 33.0},
	}
}
