// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

var statuses = []string{
	"Developer", "Junior Developer", "Senior Developer", "Manager",
	"Student or Learning", "Instructor or Teacher", "Intern", "Other",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB. A zero
// opts.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) passwordHash() string {
	if f.opts.SkipBcrypt {
		return DemoPassword
	}
	if f.hash == "" {
		// One hash for the whole run; bcrypt per user dominates large seeds.
		hashed, err := auth.HashPassword(DemoPassword)
		if err != nil {
			log.Printf("seed: hashing demo password: %v", err)
			return DemoPassword
		}
		f.hash = hashed
	}
	return f.hash
}

// BuildUser returns an unsaved developer account.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, f.faker.Number(100, 99999)))
	user := &models.User{
		Name:     first + " " + last,
		Email:    email,
		Password: f.passwordHash(),
		Avatar:   auth.GravatarURL(email),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a developer account.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildProfile returns an unsaved profile for user with a few past jobs and
// schools.
func (f *Factory) BuildProfile(user *models.User) *models.Profile {
	handle := strings.ToLower(strings.ReplaceAll(user.Name, " ", "")) + fmt.Sprint(f.faker.Number(1, 999))

	want := f.faker.Number(2, 6)
	skills := make([]string, 0, want)
	seen := map[string]bool{}
	for len(skills) < want {
		lang := f.faker.ProgrammingLanguage()
		if seen[lang] {
			continue
		}
		seen[lang] = true
		skills = append(skills, lang)
	}

	profile := &models.Profile{
		UserID:         user.ID,
		Company:        f.faker.Company(),
		Website:        "https://" + handle + ".dev",
		Location:       f.faker.City() + ", " + f.faker.StateAbr(),
		Status:         f.faker.RandomString(statuses),
		Skills:         skills,
		Bio:            f.faker.HackerPhrase(),
		GithubUsername: handle,
		Social: models.Social{
			Twitter:  "https://twitter.com/" + handle,
			LinkedIn: "https://linkedin.com/in/" + handle,
		},
	}

	start := f.faker.DateRange(time.Now().AddDate(-15, 0, 0), time.Now().AddDate(-2, 0, 0)).UTC().Truncate(24 * time.Hour)
	jobs := f.faker.Number(1, 3)
	for i := 0; i < jobs; i++ {
		exp := models.Experience{
			ID:          uuid.NewString(),
			Title:       f.faker.JobTitle(),
			Company:     f.faker.Company(),
			Location:    f.faker.City(),
			From:        start,
			Description: f.faker.Sentence(12),
		}
		end := start.AddDate(0, f.faker.Number(6, 36), 0)
		if i == jobs-1 || end.After(time.Now()) {
			exp.Current = true
		} else {
			exp.To = &end
			start = end
		}
		// newest first
		profile.Experience = append([]models.Experience{exp}, profile.Experience...)
		if exp.Current {
			break
		}
	}

	if f.faker.Bool() {
		from := f.faker.DateRange(time.Now().AddDate(-20, 0, 0), time.Now().AddDate(-16, 0, 0)).UTC().Truncate(24 * time.Hour)
		to := from.AddDate(4, 0, 0)
		profile.Education = []models.Education{{
			ID:           uuid.NewString(),
			School:       f.faker.City() + " University",
			Degree:       f.faker.RandomString([]string{"BSc", "BA", "MSc", "Bootcamp"}),
			FieldOfStudy: f.faker.RandomString([]string{"Computer Science", "Mathematics", "Physics", "Design"}),
			From:         from,
			To:           &to,
		}}
	}

	profile.EnsureCollections()
	return profile
}

// CreateProfile builds and persists a profile for user.
func (f *Factory) CreateProfile(user *models.User) (*models.Profile, error) {
	profile := f.BuildProfile(user)
	if f.opts.DryRun {
		f.nextID++
		profile.ID = f.nextID
		return profile, nil
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildPost returns an unsaved post by author. Likes and comments come from
// audience; each audience member likes at most once.
func (f *Factory) BuildPost(author *models.User, audience []models.User) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	created := time.Now().Add(-time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute).UTC()

	post := &models.Post{
		UserID:    author.ID,
		Text:      f.faker.Paragraph(1, f.faker.Number(1, 3), 12, " "),
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: created,
	}

	if len(audience) > 0 {
		likers := f.faker.Number(0, len(audience))
		order := indexes(len(audience))
		f.faker.ShuffleInts(order)
		for _, idx := range order[:likers] {
			post.Likes = append(post.Likes, models.Like{ID: uuid.NewString(), UserID: audience[idx].ID})
		}

		at := created
		for n := f.faker.Number(0, 4); n > 0; n-- {
			commenter := audience[f.faker.Number(0, len(audience)-1)]
			at = at.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
			comment := models.Comment{
				ID:        uuid.NewString(),
				UserID:    commenter.ID,
				Text:      f.faker.Sentence(f.faker.Number(4, 14)),
				Name:      commenter.Name,
				Avatar:    commenter.Avatar,
				CreatedAt: at,
			}
			post.Comments = append([]models.Comment{comment}, post.Comments...)
		}
	}

	post.EnsureCollections()
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
