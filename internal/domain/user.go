package domain

import "time"

// MinAge is the minimum age accepted at registration.
const MinAge = 13

type User struct {
	ID              string    `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Gender          *string   `json:"gender" db:"gender"`
	Bio             *string   `json:"bio" db:"bio"`
	Birthdate       time.Time `json:"birthdate" db:"birthdate"`
	ProfileImage    *string   `json:"profile_image" db:"profile_image"`
	FavoriteGenres  []string  `json:"favorite_genres" db:"favorite_genres"`
	Platforms       []string  `json:"platforms" db:"platforms"`
	EmailConsent    bool      `json:"email_consent" db:"email_consent"`
	SurveyCompleted bool      `json:"survey_completed" db:"survey_completed"`
	IsOnline        bool      `json:"is_online" db:"is_online"`
	IsAdmin         bool      `json:"is_admin" db:"is_admin"`
	DoneReview      bool      `json:"done_review" db:"done_review"`
	LastSeen        time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

func (u *User) Age() int {
	now := time.Now()
	age := now.Year() - u.Birthdate.Year()
	if now.YearDay() < u.Birthdate.YearDay() {
		age--
	}
	return age
}

// Discoverable reports whether the user may be surfaced by candidate
// discovery: opted in and finished onboarding.
func (u *User) Discoverable() bool {
	return u.EmailConsent && u.SurveyCompleted
}
