package domain

type Game struct {
	ID         string  `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	Image      *string `json:"image" db:"image"`
	Popularity int     `json:"popularity" db:"popularity"`
}
