package profile

import (
	"context"

	"redguardian/internal/reports"
	"redguardian/internal/user"
)

// Profile is everything a profile page shows: the user, their reports, the
// reports crediting them, and, on their own profile only, their favorites.
type Profile struct {
	User          *user.User       `json:"user"`
	Reports       []reports.Report `json:"reports"`
	Collaborated  []reports.Report `json:"collaborated"`
	Favorites     []user.Favorite  `json:"favorites,omitempty"`
	ReportCount   int              `json:"reportCount"`
	CollabCount   int              `json:"collabCount"`
	FavoriteCount int              `json:"favoriteCount"`
}

type Service struct {
	users   *user.Service
	reports *reports.Service
}

func NewService(users *user.Service, reports *reports.Service) *Service {
	return &Service{users: users, reports: reports}
}

// Get assembles the profile of targetID as seen by viewerID. Favorites are
// private and only included on the viewer's own profile.
func (s *Service) Get(ctx context.Context, targetID, viewerID string) (*Profile, error) {
	u, err := s.users.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	own, err := s.reports.BySender(ctx, targetID)
	if err != nil {
		return nil, err
	}
	collaborated, err := s.reports.CollaboratedBy(ctx, targetID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		User:         u,
		Reports:      own,
		Collaborated: collaborated,
		ReportCount:  len(own),
		CollabCount:  len(collaborated),
	}
	if targetID == viewerID {
		favs, err := s.users.Favorites(ctx, targetID)
		if err != nil {
			return nil, err
		}
		p.Favorites = favs
		p.FavoriteCount = len(favs)
	}
	return p, nil
}
