package reports

import "time"

type Kind string

const (
	KindProblem  Kind = "problem"
	KindSolution Kind = "solution"
)

func (k Kind) Valid() bool {
	return k == KindProblem || k == KindSolution
}

// Report is one incident entry in the feed: a problem sighting, or a
// solution that may reference the problems it addresses.
type Report struct {
	ID          string `gorm:"primaryKey" json:"id"`
	SenderID    string `gorm:"index;not null" json:"senderId"`
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	Kind        Kind   `gorm:"not null" json:"kind"`
	Summary     string `gorm:"not null" json:"summary"`
	FileURL     string `json:"fileUrl"`
	Filename    string `json:"filename"`
	Category    string `json:"category"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Comments      []Comment      `gorm:"foreignKey:ReportID" json:"comments"`
	Collaborators []Collaborator `gorm:"foreignKey:ReportID" json:"collaborators"`
	Links         []Link         `gorm:"foreignKey:SolutionID" json:"links,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// LinkedProblems lists the ids of the problem reports a solution addresses.
func (r *Report) LinkedProblems() []string {
	ids := make([]string, 0, len(r.Links))
	for _, l := range r.Links {
		ids = append(ids, l.ProblemID)
	}
	return ids
}

type Comment struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ReportID    string    `gorm:"index;not null" json:"-"`
	AuthorID    string    `gorm:"not null" json:"userId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"author"`
	Text        string    `json:"text"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Link ties a solution report to one of the problem reports it solves.
type Link struct {
	SolutionID string `gorm:"primaryKey" json:"solutionId"`
	ProblemID  string `gorm:"primaryKey" json:"problemId"`
}

// Collaborator is a user credited on a solution report, captured with their
// labels at link time.
type Collaborator struct {
	ReportID string `gorm:"primaryKey" json:"-"`
	UserID   string `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}
