package client

// Action is one state transition. The set of actions is closed.
type Action interface {
	isAction()
}

type action struct{}

func (action) isAction() {}

// Auth actions.
type (
	RegisterSuccess struct {
		action
		Token string
	}
	RegisterFail struct{ action }
	UserLoaded   struct {
		action
		User User
	}
	AuthError    struct{ action }
	LoginSuccess struct {
		action
		Token string
	}
	LoginFail      struct{ action }
	Logout         struct{ action }
	AccountDeleted struct{ action }
)

// Profile actions.
type (
	GetProfile struct {
		action
		Profile Profile
	}
	GetProfiles struct {
		action
		Profiles []Profile
	}
	GetRepos struct {
		action
		Repos []Repo
	}
	NoRepos       struct{ action }
	UpdateProfile struct {
		action
		Profile Profile
	}
	ProfileError struct {
		action
		Err ErrorState
	}
	ClearProfile struct{ action }
)

// Post actions.
type (
	GetPosts struct {
		action
		Posts []Post
	}
	GetPost struct {
		action
		Post Post
	}
	AddPost struct {
		action
		Post Post
	}
	DeletePost struct {
		action
		ID uint
	}
	UpdateLikes struct {
		action
		ID    uint
		Likes []Like
	}
	AddComment struct {
		action
		Comments []Comment
	}
	RemoveComment struct {
		action
		CommentID string
	}
	PostError struct {
		action
		Err ErrorState
	}
)

// Alert actions.
type (
	SetAlert struct {
		action
		Alert Alert
	}
	RemoveAlert struct {
		action
		ID string
	}
)
