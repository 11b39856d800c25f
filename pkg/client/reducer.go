package client

// Reduce returns the state after a. It never modifies s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case UserLoaded:
		user := a.User
		s.Auth = AuthState{Token: s.Auth.Token, IsAuthenticated: true, User: &user}
	case RegisterSuccess:
		s.Auth = AuthState{Token: a.Token, IsAuthenticated: true, User: s.Auth.User}
	case LoginSuccess:
		s.Auth = AuthState{Token: a.Token, IsAuthenticated: true, User: s.Auth.User}
	case RegisterFail, AuthError, LoginFail, Logout, AccountDeleted:
		s.Auth = AuthState{}

	case GetProfile:
		p := a.Profile
		s.Profile.Profile = &p
		s.Profile.Loading = false
	case UpdateProfile:
		p := a.Profile
		s.Profile.Profile = &p
		s.Profile.Loading = false
	case GetProfiles:
		s.Profile.Profiles = nonNil(a.Profiles)
		s.Profile.Loading = false
	case GetRepos:
		s.Profile.Repos = nonNil(a.Repos)
		s.Profile.Loading = false
	case NoRepos:
		s.Profile.Repos = []Repo{}
	case ProfileError:
		e := a.Err
		s.Profile.Error = &e
		s.Profile.Loading = false
		s.Profile.Profile = nil
	case ClearProfile:
		s.Profile.Profile = nil
		s.Profile.Repos = []Repo{}
		s.Profile.Loading = false

	case GetPosts:
		s.Post.Posts = nonNil(a.Posts)
		s.Post.Loading = false
	case GetPost:
		p := a.Post
		s.Post.Post = &p
		s.Post.Loading = false
	case AddPost:
		s.Post.Posts = append([]Post{a.Post}, s.Post.Posts...)
		s.Post.Loading = false
	case DeletePost:
		s.Post.Posts = filter(s.Post.Posts, func(p Post) bool { return p.ID != a.ID })
		if s.Post.Post != nil && s.Post.Post.ID == a.ID {
			s.Post.Post = nil
		}
		s.Post.Loading = false
	case UpdateLikes:
		likes := nonNil(a.Likes)
		posts := make([]Post, len(s.Post.Posts))
		for i, p := range s.Post.Posts {
			if p.ID == a.ID {
				p.Likes = likes
			}
			posts[i] = p
		}
		s.Post.Posts = posts
		if s.Post.Post != nil && s.Post.Post.ID == a.ID {
			p := *s.Post.Post
			p.Likes = likes
			s.Post.Post = &p
		}
		s.Post.Loading = false
	case AddComment:
		if s.Post.Post != nil {
			p := *s.Post.Post
			p.Comments = nonNil(a.Comments)
			s.Post.Post = &p
		}
		s.Post.Loading = false
	case RemoveComment:
		if s.Post.Post != nil {
			p := *s.Post.Post
			p.Comments = filter(p.Comments, func(c Comment) bool { return c.ID != a.CommentID })
			s.Post.Post = &p
		}
		s.Post.Loading = false
	case PostError:
		e := a.Err
		s.Post.Error = &e
		s.Post.Loading = false

	case SetAlert:
		s.Alerts = append(append(make([]Alert, 0, len(s.Alerts)+1), s.Alerts...), a.Alert)
	case RemoveAlert:
		s.Alerts = filter(s.Alerts, func(al Alert) bool { return al.ID != a.ID })
	}
	return s
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
