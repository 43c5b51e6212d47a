package models

// User is the profile record owned by the session manager. It is created
// together with a Session and destroyed alongside it on logout.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	AvatarURL      string `json:"avatarUrl"`
	Role           string `json:"role"`
	Bio            string `json:"bio"`
	FollowerCount  int    `json:"followerCount"`
	FollowingCount int    `json:"followingCount"`
}

// UserPatch is a partial profile update. Nil fields are left untouched by
// Merge, so an empty patch is a no-op.
type UserPatch struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// Merge returns a copy of u with the non-nil patch fields applied.
func (u User) Merge(p UserPatch) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	return u
}
