package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	PhotoURL     string    `json:"photoUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName is the label shown next to the user's content. Falls back to
// the email when no name was provided.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return u.Email
	}
	return u.Name
}

// Favorite is one entry of a user's favorite-reports list. The title and
// link are captured at toggle time so the list renders without loading the
// report itself.
type Favorite struct {
	UserID    string    `gorm:"primaryKey" json:"-"`
	ReportID  string    `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"-"`
}
