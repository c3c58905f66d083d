package feature

// 类型与主题词表在进程启动时固定：向量各维的含义由词表顺序决定，
// 运行中改词表会让缓存的特征向量失去可比性。

// defaultGenres 是封闭有序的类型 ID 词表（TMDB 口径）。
var defaultGenres = []int{
	28,    // Action
	35,    // Comedy
	18,    // Drama
	27,    // Horror
	10749, // Romance
	878,   // Science Fiction
	53,    // Thriller
	16,    // Animation
	80,    // Crime
	99,    // Documentary
	37,    // Western
	36,    // History
	14,    // Fantasy
	10752, // War
	9648,  // Mystery
}

// GenreNames 是类型 ID 到英文名的映射，生成推荐理由时使用。
var GenreNames = map[int]string{
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
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// defaultThemes 是封闭有序的主题词表。
var defaultThemes = []string{
	"friendship",
	"love",
	"family",
	"revenge",
	"war",
	"coming-of-age",
	"redemption",
	"sacrifice",
}

// MoodGenres 是心情到类型的映射，上下文打分时使用。
var MoodGenres = map[string][]int{
	"happy":      {35, 16, 10749},
	"sad":        {18},
	"excited":    {28, 12, 53},
	"relaxed":    {99, 36},
	"scared":     {27},
	"thoughtful": {878, 18},
}

// DefaultGenres 返回类型词表的副本。
func DefaultGenres() []int {
	out := make([]int, len(defaultGenres))
	copy(out, defaultGenres)
	return out
}

// DefaultThemes 返回主题词表的副本。
func DefaultThemes() []string {
	out := make([]string, len(defaultThemes))
	copy(out, defaultThemes)
	return out
}
