package domain

// UserProfile is the read-only profile shown in the dashboard header.
type UserProfile struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
}

// UserID returns the id of whichever user variant the envelope holds.
func (e UserEnvelope) UserID() (int64, bool) {
	switch {
	case e.UserPerson != nil:
		return e.UserPerson.ID, true
	case e.UserCompany != nil:
		return e.UserCompany.ID, true
	case e.UserApiKey != nil:
		return e.UserApiKey.ID, true
	}
	return 0, false
}

// Profile flattens the envelope. It returns false when the envelope holds no user.
func (e UserEnvelope) Profile() (UserProfile, bool) {
	switch {
	case e.UserPerson != nil:
		p := e.UserPerson
		return UserProfile{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Email:       p.Email,
		}, true
	case e.UserCompany != nil:
		c := e.UserCompany
		name := c.DisplayName
		if name == "" {
			name = c.Name
		}
		return UserProfile{ID: c.ID, DisplayName: name}, true
	case e.UserApiKey != nil:
		return UserProfile{ID: e.UserApiKey.ID}, true
	}
	return UserProfile{}, false
}
